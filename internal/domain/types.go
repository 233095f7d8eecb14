// Package domain contains the core entities exchanged by the work-relatedness
// evaluation server: patient records, diagnoses, job histories and the
// evaluation results derived from them.
//
// The scoring itself lives in pkg/burden; this package only models the
// surrounding clinical record and its categorical fields.
package domain

import (
	"errors"
)

// Gender of the patient as captured on the intake form.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Side is the body side a diagnosis applies to.
type Side string

const (
	SideRight Side = "right"
	SideLeft  Side = "left"
	SideBoth  Side = "both"
)

// DiagnosisStatus records whether the claimed condition was confirmed on
// examination for a given side.
type DiagnosisStatus string

const (
	StatusConfirmed   DiagnosisStatus = "confirmed"
	StatusMild        DiagnosisStatus = "mild"
	StatusUnconfirmed DiagnosisStatus = "unconfirmed"
)

// AssessmentLevel is the physician's per-side work-relatedness judgement.
type AssessmentLevel string

const (
	AssessmentHigh AssessmentLevel = "high"
	AssessmentLow  AssessmentLevel = "low"
)

// LowRelatednessReason explains a low per-side assessment.
type LowRelatednessReason string

const (
	ReasonUnrelated LowRelatednessReason = "unrelated"
	ReasonMild      LowRelatednessReason = "mild"
	ReasonDelayed   LowRelatednessReason = "delayed"
	ReasonOther     LowRelatednessReason = "other"
)

// KLGrade is the Kellgren-Lawrence radiographic grade ("1".."4") or "N/A".
type KLGrade string

const (
	KLGradeNA KLGrade = "N/A"
	KLGrade1  KLGrade = "1"
	KLGrade2  KLGrade = "2"
	KLGrade3  KLGrade = "3"
	KLGrade4  KLGrade = "4"
)

// AuxiliaryFactor is an additional knee-loading activity recorded for a job.
type AuxiliaryFactor string

const (
	FactorStairs      AuxiliaryFactor = "stairs"
	FactorKneeTwist   AuxiliaryFactor = "knee_twist"
	FactorStartStop   AuxiliaryFactor = "start_stop"
	FactorTightSpace  AuxiliaryFactor = "tight_space"
	FactorKneeContact AuxiliaryFactor = "knee_contact"
	FactorJumpDown    AuxiliaryFactor = "jump_down"
)

// AllAuxiliaryFactors lists the factors in report order.
var AllAuxiliaryFactors = []AuxiliaryFactor{
	FactorStairs, FactorKneeTwist, FactorStartStop,
	FactorTightSpace, FactorKneeContact, FactorJumpDown,
}

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidSide     = errors.New("invalid diagnosis side")
	ErrInvalidStatus   = errors.New("invalid diagnosis status")
	ErrInvalidKLGrade  = errors.New("invalid Kellgren-Lawrence grade")
	ErrInvalidReason   = errors.New("invalid low-relatedness reason")
	ErrPresetSource    = errors.New("preset source unavailable")
	ErrInvalidCatalog  = errors.New("invalid preset catalog")
	ErrIncompleteInput = errors.New("incomplete patient record")
)

// IsValid reports whether s is a known side.
func (s Side) IsValid() bool {
	switch s {
	case SideRight, SideLeft, SideBoth:
		return true
	default:
		return false
	}
}

// IncludesRight reports whether the right side is affected.
func (s Side) IncludesRight() bool { return s == SideRight || s == SideBoth }

// IncludesLeft reports whether the left side is affected.
func (s Side) IncludesLeft() bool { return s == SideLeft || s == SideBoth }

// IsValid reports whether ds is a known status.
func (ds DiagnosisStatus) IsValid() bool {
	switch ds {
	case StatusConfirmed, StatusMild, StatusUnconfirmed:
		return true
	default:
		return false
	}
}

// IsValid reports whether a is a known assessment level.
func (a AssessmentLevel) IsValid() bool {
	return a == AssessmentHigh || a == AssessmentLow
}

// IsValid reports whether r is a known reason.
func (r LowRelatednessReason) IsValid() bool {
	switch r {
	case ReasonUnrelated, ReasonMild, ReasonDelayed, ReasonOther:
		return true
	default:
		return false
	}
}

// IsValid reports whether g is N/A or a grade from 1 to 4.
func (g KLGrade) IsValid() bool {
	switch g {
	case KLGradeNA, KLGrade1, KLGrade2, KLGrade3, KLGrade4:
		return true
	default:
		return false
	}
}

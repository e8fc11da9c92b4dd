// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

// Each answer field is a closed choice set. The empty string means the
// question was not answered yet.

type YesNo string

const (
	Yes       YesNo = "yes"
	No        YesNo = "no"
	YesNoSkip YesNo = "skip"
)

func (v YesNo) Valid() bool { return oneOf(v, Yes, No, YesNoSkip) }

type BreastfeedPeriod string

const (
	BreastfeedUpTo3Months BreastfeedPeriod = "0_3_months"
	Breastfeed4To5Months  BreastfeedPeriod = "4_5_months"
	Breastfeed6Months     BreastfeedPeriod = "6_months"
	BreastfeedOver6Months BreastfeedPeriod = "over_6_months"
	BreastfeedNotSure     BreastfeedPeriod = "not_sure"
	BreastfeedPeriodSkip  BreastfeedPeriod = "skip"
)

func (v BreastfeedPeriod) Valid() bool {
	return oneOf(v, BreastfeedUpTo3Months, Breastfeed4To5Months, Breastfeed6Months,
		BreastfeedOver6Months, BreastfeedNotSure, BreastfeedPeriodSkip)
}

// Agreement is a five point Likert answer.
type Agreement string

const (
	StronglyAgree    Agreement = "strongly_agree"
	Agree            Agreement = "agree"
	Neutral          Agreement = "neutral"
	Disagree         Agreement = "disagree"
	StronglyDisagree Agreement = "strongly_disagree"
	AgreementSkip    Agreement = "skip"
)

func (v Agreement) Valid() bool {
	return oneOf(v, StronglyAgree, Agree, Neutral, Disagree, StronglyDisagree, AgreementSkip)
}

type ClinicVisitFrequency string

const (
	VisitMoreThanMonthly ClinicVisitFrequency = "more_than_once_a_month"
	VisitMonthly         ClinicVisitFrequency = "once_a_month"
	VisitLessThanMonthly ClinicVisitFrequency = "less_than_once_a_month"
	VisitNever           ClinicVisitFrequency = "never"
	VisitSkip            ClinicVisitFrequency = "skip"
)

func (v ClinicVisitFrequency) Valid() bool {
	return oneOf(v, VisitMoreThanMonthly, VisitMonthly, VisitLessThanMonthly, VisitNever, VisitSkip)
}

type LiverFrequency string

const (
	LiverTwoThreeWeekly  LiverFrequency = "2_3_week"
	LiverWeekly          LiverFrequency = "once_a_week"
	LiverMonthly         LiverFrequency = "once_a_month"
	LiverLessThanMonthly LiverFrequency = "less_once_a_month"
	LiverNever           LiverFrequency = "never"
	LiverSkip            LiverFrequency = "skip"
)

func (v LiverFrequency) Valid() bool {
	return oneOf(v, LiverTwoThreeWeekly, LiverWeekly, LiverMonthly, LiverLessThanMonthly, LiverNever, LiverSkip)
}

// DangerSign1 asks which symptom needs a clinic visit.
type DangerSign1 string

const (
	DangerWeightGain DangerSign1 = "weight_gain"
	DangerVomiting   DangerSign1 = "vomiting"
	DangerHeadache   DangerSign1 = "headache"
	DangerNotSure1   DangerSign1 = "not_sure"
	DangerSign1Skip  DangerSign1 = "skip"
)

func (v DangerSign1) Valid() bool {
	return oneOf(v, DangerWeightGain, DangerVomiting, DangerHeadache, DangerNotSure1, DangerSign1Skip)
}

type DangerSign2 string

const (
	DangerSwollenFeet DangerSign2 = "swollen_feet_legs"
	DangerBloating    DangerSign2 = "bloating"
	DangerGas         DangerSign2 = "gas"
	DangerNotSure2    DangerSign2 = "not_sure"
	DangerSign2Skip   DangerSign2 = "skip"
)

func (v DangerSign2) Valid() bool {
	return oneOf(v, DangerSwollenFeet, DangerBloating, DangerGas, DangerNotSure2, DangerSign2Skip)
}

type MaritalStatus string

const (
	NeverMarried MaritalStatus = "never_married"
	Married      MaritalStatus = "married"
	Separated    MaritalStatus = "separated_or_divorced"
	Widowed      MaritalStatus = "widowed"
	Partnered    MaritalStatus = "partner_or_boyfriend"
	MaritalSkip  MaritalStatus = "skip"
)

func (v MaritalStatus) Valid() bool {
	return oneOf(v, NeverMarried, Married, Separated, Widowed, Partnered, MaritalSkip)
}

type EducationLevel string

const (
	LessThanGrade7 EducationLevel = "less_grade_7"
	Grade7To12     EducationLevel = "between_grade_7_12"
	Matric         EducationLevel = "matric"
	Diploma        EducationLevel = "diploma"
	DegreeOrHigher EducationLevel = "degree_or_higher"
	EducationSkip  EducationLevel = "skip"
)

func (v EducationLevel) Valid() bool {
	return oneOf(v, LessThanGrade7, Grade7To12, Matric, Diploma, DegreeOrHigher, EducationSkip)
}

// PregnancySupport is who the participant leans on during pregnancy.
type PregnancySupport string

const (
	SupportPartner PregnancySupport = "partner"
	SupportFamily  PregnancySupport = "family"
	SupportFriends PregnancySupport = "friends"
	SupportNobody  PregnancySupport = "nobody"
	SupportSkip    PregnancySupport = "skip"
)

func (v PregnancySupport) Valid() bool {
	return oneOf(v, SupportPartner, SupportFamily, SupportFriends, SupportNobody, SupportSkip)
}

func oneOf[T ~string](v T, choices ...T) bool {
	if v == "" {
		return true
	}
	for _, c := range choices {
		if v == c {
			return true
		}
	}
	return false
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Date layout used on the wire.
const DateLayout = "2006-01-02"

// Request types

type RandomStrataArmRequest struct {
	FacilityCode          string `json:"facility_code" validate:"required"`
	EstimatedDeliveryDate string `json:"estimated_delivery_date" validate:"required,datetime=2006-01-02"`
	MomAge                *int   `json:"mom_age" validate:"required,gte=0,lte=120"`
}

type NextMessageRequest struct {
	ContactUUID      string `json:"contact_uuid" validate:"required,uuid"`
	RunUUID          string `json:"run_uuid" validate:"required,uuid"`
	EDDOrDOBDate     string `json:"edd_or_dob_date" validate:"required,datetime=2006-01-02"`
	SubscriptionType string `json:"subscription_type" validate:"required,oneof=pre post PRE POST"`
	Arm              string `json:"arm" validate:"required,max=32"`
	MomName          string `json:"mom_name" validate:"required,max=128"`
	Sequence         string `json:"sequence" validate:"omitempty,alphanum,max=8"`
}

type FAQRequest struct {
	ContactUUID string   `json:"contact_uuid" validate:"required,uuid"`
	RunUUID     string   `json:"run_uuid" validate:"required,uuid"`
	Tag         string   `json:"tag" validate:"required,max=128"`
	FAQNumber   int      `json:"faq_number" validate:"required,gte=1"`
	Viewed      []string `json:"viewed" validate:"omitempty,dive,required"`
}

type FAQMenuRequest struct {
	Tag        string `json:"tag" validate:"required,max=128"`
	MenuOffset int    `json:"menu_offset" validate:"gte=0"`
}

// Response types

// RandomStrataArmResponse carries either the allocated arm or the reason
// the participant falls outside every stratum.
type RandomStrataArmResponse struct {
	RandomArm string `json:"random_arm,omitempty"`
	Excluded  bool   `json:"excluded,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type NextMessageResponse struct {
	Message       string `json:"message"`
	IsTemplate    bool   `json:"is_template"`
	HasParameters bool   `json:"has_parameters"`
	NextSendDate  string `json:"next_send_date"`
	Tag           string `json:"tag"`
}

type FAQResponse struct {
	Message       string   `json:"message"`
	IsTemplate    bool     `json:"is_template"`
	HasParameters bool     `json:"has_parameters"`
	FAQMenu       string   `json:"faq_menu"`
	FAQNumbers    string   `json:"faq_numbers"`
	Viewed        []string `json:"viewed"`
}

type FAQMenuResponse struct {
	Menu       string `json:"menu"`
	FAQNumbers string `json:"faq_numbers"`
}

type SurveyCreatedResponse struct {
	MSISDN string `json:"msisdn"`
}

// Error responses

// ContentErrorResponse is returned when no single content page matches.
type ContentErrorResponse struct {
	Error string `json:"error"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the JSON request and response bodies of the API.

# Request Types

Request structs carry go-playground/validator tags and are checked by
middleware.Validate before any handler logic runs:

  - RandomStrataArmRequest: facility_code, estimated_delivery_date, mom_age
  - NextMessageRequest: contact_uuid, run_uuid, edd_or_dob_date, subscription_type, arm, mom_name, sequence
  - FAQRequest: contact_uuid, run_uuid, tag, faq_number, viewed
  - FAQMenuRequest: tag, menu_offset

Dates use DateLayout (YYYY-MM-DD).

# Response Types

  - RandomStrataArmResponse: random_arm, or excluded and reason
  - NextMessageResponse: message, is_template, has_parameters, next_send_date, tag
  - FAQResponse: message, is_template, has_parameters, faq_menu, faq_numbers, viewed
  - FAQMenuResponse: menu, faq_numbers
  - SurveyCreatedResponse: msisdn

# Errors

ContentErrorResponse is the bare {"error": "..."} body of content lookups
that matched zero or several pages. Everything else uses ErrorResponse, with
Fields set for validation failures.
*/
package models

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the MQR API.

# Handler Types

  - StrataHandler: stratified arm randomisation
  - MessageHandler: weekly messages, FAQs and FAQ menus
  - SurveyHandler: baseline survey results

The strata and message handlers also expose their logic as plain methods
(Allocate, Next, FAQMessage, Menu) which the MCP tools reuse.

# Randomisation

	POST /api/v1/mqr_randomstrataarm → RandomStrataArm

The facility code resolves to a province, the delivery date to a weeks
bucket and the mother's age to an age bucket. Participants outside the
buckets get {"excluded": true, "reason": ...} and consume no arm.

# Messaging

	POST /api/v1/mqr-nextmessage/ → NextMessage
	POST /api/v1/mqr-faq/         → FAQ
	POST /api/v1/mqr-faq-menu/    → FAQMenu

# Errors

	validation failure          400 {error, message, fields}
	no or several content pages 400 {error: "no message found"} / "multiple message found"
	allocation conflict         503
	content repository failure  502
	missing survey              404
*/
package handlers

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// Media type kinds.
const (
	MediaTypeEmail   = 0
	MediaTypeExec    = 1
	MediaTypeSMS     = 2
	MediaTypeWebhook = 4
)

// Media type status values.
const (
	MediaTypeStatusActive   = 0
	MediaTypeStatusDisabled = 1
)

// Email providers. Only the generic SMTP provider exposes the HELO value.
const (
	EmailProviderSMTP           = 0
	EmailProviderGmail          = 1
	EmailProviderGmailRelay     = 2
	EmailProviderOffice365      = 3
	EmailProviderOffice365Relay = 4
)

// MediaType is a notification channel definition.
type MediaType struct {
	MediaTypeID string `json:"mediatypeid" yaml:"mediatypeid" validate:"required,numeric"`
	Name        string `json:"name" yaml:"name" validate:"required,max=100"`
	Type        int    `json:"type" yaml:"type" validate:"oneof=0 1 2 4"`
	Status      int    `json:"status" yaml:"status" validate:"oneof=0 1"`
	Provider    int    `json:"provider" yaml:"provider" validate:"gte=0,lte=4"`
	SMTPServer  string `json:"smtp_server,omitempty" yaml:"smtp_server,omitempty"`
	SMTPHelo    string `json:"smtp_helo,omitempty" yaml:"smtp_helo,omitempty"`
	SMTPEmail   string `json:"smtp_email,omitempty" yaml:"smtp_email,omitempty"`
	ExecPath    string `json:"exec_path,omitempty" yaml:"exec_path,omitempty"`
	GSMModem    string `json:"gsm_modem,omitempty" yaml:"gsm_modem,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// MediaTypeName returns the display name of a media type kind.
func MediaTypeName(kind int) string {
	switch kind {
	case MediaTypeEmail:
		return "Email"
	case MediaTypeExec:
		return "Script"
	case MediaTypeSMS:
		return "SMS"
	case MediaTypeWebhook:
		return "Webhook"
	default:
		return ""
	}
}

// Action is an alerting action. Only the fields the media type list needs
// are kept.
type Action struct {
	ActionID     string   `json:"actionid" yaml:"actionid" validate:"required,numeric"`
	Name         string   `json:"name" yaml:"name" validate:"required"`
	EventSource  int      `json:"eventsource" yaml:"eventsource" validate:"gte=0,lte=4"`
	MediaTypeIDs []string `json:"mediatypeids,omitempty" yaml:"mediatypeids,omitempty" validate:"dive,numeric"`
}

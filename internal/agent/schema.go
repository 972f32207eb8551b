package agent

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// XMLAttachment is one harvested .xml attachment record.
// EncodedContent holds either the base64 content or a location reference,
// depending on how the remote tool materialized the file.
type XMLAttachment struct {
	FileName       string `json:"nome_arquivo"`
	EncodedContent string `json:"conteudo_codificado"`
}

// Email is one matched message with its eligible attachments.
type Email struct {
	EmailID        string          `json:"email_id"`
	Sender         string          `json:"remetente"`
	Subject        string          `json:"assunto"`
	Date           string          `json:"data"`
	XMLAttachments []XMLAttachment `json:"anexos_xml"`
}

// EmailReport is the agent's final structured output: the ordered sequence
// of matched emails.
type EmailReport struct {
	Emails []Email `json:"emails"`
}

// AttachmentCount returns the total number of attachment records across all
// emails. The harvest ceiling is measured over this count, not over emails.
func (r *EmailReport) AttachmentCount() int {
	n := 0
	for i := range r.Emails {
		n += len(r.Emails[i].XMLAttachments)
	}
	return n
}

// TruncateAttachments drops attachment records beyond max, preserving order.
// Emails left with no attachments after truncation are removed. Returns the
// number of records dropped.
func (r *EmailReport) TruncateAttachments(max int) int {
	if max < 0 {
		max = 0
	}

	dropped := 0
	remaining := max
	kept := r.Emails[:0]
	for i := range r.Emails {
		email := r.Emails[i]
		if len(email.XMLAttachments) > remaining {
			dropped += len(email.XMLAttachments) - remaining
			email.XMLAttachments = email.XMLAttachments[:remaining]
		}
		remaining -= len(email.XMLAttachments)
		if len(email.XMLAttachments) > 0 {
			kept = append(kept, email)
		}
	}
	r.Emails = kept
	if r.Emails == nil {
		r.Emails = []Email{}
	}
	return dropped
}

// MarshalText serializes the report. Emails always serializes as an array,
// never null, so a zero-match run yields {"emails":[]}.
func (r *EmailReport) MarshalText() (string, error) {
	if r.Emails == nil {
		r.Emails = []Email{}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("serialize email report: %w", err)
	}
	return string(data), nil
}

// OutputSchema reflects the EmailReport type into the JSON schema the engine
// validates the final output against. The schema is inlined (no $ref) as the
// structured-output contract requires a self-contained document.
func OutputSchema() (json.RawMessage, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&EmailReport{})
	data, err := schema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("reflect output schema: %w", err)
	}
	return data, nil
}

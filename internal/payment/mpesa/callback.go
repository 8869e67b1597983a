package mpesa

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Verdicts reported by PaymentStatus
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ResultCallback body posted to ResultURL
type ResultCallback struct {
	Result struct {
		ResultType               json.Number `json:"ResultType"`
		ResultCode               json.Number `json:"ResultCode"`
		ResultDesc               string      `json:"ResultDesc"`
		OriginatorConversationID string      `json:"OriginatorConversationID"`
		ConversationID           string      `json:"ConversationID"`
		TransactionID            string      `json:"TransactionID"`
	} `json:"Result"`
}

// ResultParameter one Key/Value pair of a result's ResultParameters
type ResultParameter struct {
	Key   string      `json:"Key"`
	Value interface{} `json:"Value"`
}

// StatusResultCallback body posted to the status query ResultURL. Result
// ids belong to the query; the payout itself is named in ResultParameters.
type StatusResultCallback struct {
	Result struct {
		ResultType               json.Number `json:"ResultType"`
		ResultCode               json.Number `json:"ResultCode"`
		ResultDesc               string      `json:"ResultDesc"`
		OriginatorConversationID string      `json:"OriginatorConversationID"`
		ConversationID           string      `json:"ConversationID"`
		TransactionID            string      `json:"TransactionID"`
		ResultParameters         struct {
			ResultParameter parameterList `json:"ResultParameter"`
		} `json:"ResultParameters"`
	} `json:"Result"`
}

// parameterList accepts ResultParameter as an array or a single object
type parameterList []ResultParameter

func (p *parameterList) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" || trimmed == "null" {
		*p = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var single ResultParameter
		if err := json.Unmarshal(b, &single); err != nil {
			return err
		}
		*p = parameterList{single}
		return nil
	}
	var list []ResultParameter
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*p = list
	return nil
}

// TimeoutCallback body posted to QueueTimeOutURL
type TimeoutCallback struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	Result                   *struct {
		ConversationID           string `json:"ConversationID"`
		OriginatorConversationID string `json:"OriginatorConversationID"`
	} `json:"Result,omitempty"`
}

// Ack response Daraja expects from every callback
type Ack struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// NewAck acknowledgement that stops upstream retries
func NewAck(desc string) Ack {
	return Ack{ResultCode: 0, ResultDesc: desc}
}

// ParseResultCallback decodes a result callback; json.Number accepts ResultCode as 0 or "0"
func ParseResultCallback(body []byte) (*ResultCallback, error) {
	if len(body) == 0 {
		return nil, ErrResponseInvalid
	}
	var data ResultCallback
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return &data, nil
}

// ParseTimeoutCallback decodes a timeout callback
func ParseTimeoutCallback(body []byte) (*TimeoutCallback, error) {
	if len(body) == 0 {
		return nil, ErrResponseInvalid
	}
	var data TimeoutCallback
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return &data, nil
}

// ParseStatusResultCallback decodes a status query result
func ParseStatusResultCallback(body []byte) (*StatusResultCallback, error) {
	if len(body) == 0 {
		return nil, ErrResponseInvalid
	}
	var data StatusResultCallback
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return &data, nil
}

// Succeeded ResultCode 0 means the payout completed
func (r *ResultCallback) Succeeded() bool {
	return strings.TrimSpace(r.Result.ResultCode.String()) == "0"
}

// ExternalIDs correlation ids, ConversationID first
func (r *ResultCallback) ExternalIDs() []string {
	return nonEmpty(r.Result.ConversationID, r.Result.OriginatorConversationID)
}

// ExternalIDs correlation ids, ConversationID first
func (t *TimeoutCallback) ExternalIDs() []string {
	ids := []string{t.ConversationID, t.OriginatorConversationID}
	if t.Result != nil {
		ids = append(ids, t.Result.ConversationID, t.Result.OriginatorConversationID)
	}
	return nonEmpty(ids...)
}

// ReceiptNumber M-Pesa receipt of a completed payout
func (r *ResultCallback) ReceiptNumber() string {
	return strings.TrimSpace(r.Result.TransactionID)
}

// QueryIDs ids of the status query itself, ConversationID first
func (s *StatusResultCallback) QueryIDs() []string {
	return nonEmpty(s.Result.ConversationID, s.Result.OriginatorConversationID)
}

// PaymentIDs ids of the queried payout taken from ResultParameters
func (s *StatusResultCallback) PaymentIDs() []string {
	return nonEmpty(s.Parameter("ConversationID"), s.Parameter("OriginatorConversationID"))
}

// ReceiptNumber receipt of the queried payout
func (s *StatusResultCallback) ReceiptNumber() string {
	return firstNonEmpty(s.Parameter("ReceiptNo"), s.Result.TransactionID)
}

// Parameter value of a ResultParameters key as text
func (s *StatusResultCallback) Parameter(key string) string {
	for _, item := range s.Result.ResultParameters.ResultParameter {
		if !strings.EqualFold(strings.TrimSpace(item.Key), key) {
			continue
		}
		switch v := item.Value.(type) {
		case nil:
			return ""
		case string:
			return strings.TrimSpace(v)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

// PaymentStatus verdict on the queried payout: completed, failed or empty while
// Daraja still reports it in flight. A failed query means the payout is unknown
// to the gateway.
func (s *StatusResultCallback) PaymentStatus() string {
	if strings.TrimSpace(s.Result.ResultCode.String()) != "0" {
		return StatusFailed
	}
	switch strings.ToLower(s.Parameter("TransactionStatus")) {
	case "", "completed":
		return StatusCompleted
	case "failed", "declined", "cancelled", "expired", "reversed":
		return StatusFailed
	default:
		return ""
	}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

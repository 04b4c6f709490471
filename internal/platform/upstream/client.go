package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/renalcare/dashboard/internal/domain/analytics"
	"github.com/renalcare/dashboard/internal/domain/decision"
	"github.com/renalcare/dashboard/internal/domain/dialysis"
	"github.com/renalcare/dashboard/internal/domain/investigation"
	"github.com/renalcare/dashboard/internal/domain/notification"
	"github.com/renalcare/dashboard/internal/domain/patient"
	"github.com/renalcare/dashboard/internal/domain/prediction"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

// Client fetches clinical data from the backend API and predictions from the
// model service. It is safe for concurrent use.
type Client struct {
	backendURL string
	mlURL      string
	httpClient *http.Client
	tokens     TokenSource
	log        zerolog.Logger
}

// NewClient creates a Client against the given base URLs.
func NewClient(backendURL, mlURL string, tokens TokenSource, log zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		backendURL: strings.TrimRight(backendURL, "/"),
		mlURL:      strings.TrimRight(mlURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokens:     tokens,
		log:        log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// errorBody is the backend's JSON error envelope.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// do issues one authenticated request and decodes a 2xx JSON body into out.
// Non-2xx responses are mapped into the error taxonomy: 401/403 to AuthError,
// 404 to NotFoundError, everything else to FetchError.
func (c *Client) do(ctx context.Context, op, method, url string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Op: op, Err: err}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Classify(op, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("op", op).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("upstream request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &eb)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			msg := eb.text()
			if msg == "" {
				msg = "Authentication failed"
			}
			return &AuthError{Message: msg}
		case http.StatusNotFound:
			return &NotFoundError{Resource: op, ID: url}
		default:
			return &FetchError{Op: op, Status: resp.StatusCode, Message: eb.text()}
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// FetchPatientByID returns one patient record, or a NotFoundError.
func (c *Client) FetchPatientByID(ctx context.Context, id string) (*patient.Patient, error) {
	var p patient.Patient
	url := fmt.Sprintf("%s/patients/%s", c.backendURL, id)
	if err := c.do(ctx, "fetch patient", http.MethodGet, url, nil, &p); err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{Resource: "patient", ID: id}
		}
		return nil, err
	}
	return &p, nil
}

// FetchAllPatients returns the full patient roster.
func (c *Client) FetchAllPatients(ctx context.Context) ([]patient.Patient, error) {
	var list []patient.Patient
	url := c.backendURL + "/patients"
	if err := c.do(ctx, "fetch patients", http.MethodGet, url, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchDialysisSessions returns a patient's treatment history in backend order.
func (c *Client) FetchDialysisSessions(ctx context.Context, patientID string) ([]dialysis.Session, error) {
	var list []dialysis.Session
	url := fmt.Sprintf("%s/patients/%s/dialysis-sessions", c.backendURL, patientID)
	if err := c.do(ctx, "fetch dialysis sessions", http.MethodGet, url, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchMonthlyInvestigations returns a patient's lab panels in backend order.
func (c *Client) FetchMonthlyInvestigations(ctx context.Context, patientID string) ([]investigation.MonthlyInvestigation, error) {
	var list []investigation.MonthlyInvestigation
	url := fmt.Sprintf("%s/patients/%s/monthly-investigations", c.backendURL, patientID)
	if err := c.do(ctx, "fetch investigations", http.MethodGet, url, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchHemoglobinTrend returns a patient's hemoglobin series. Embedded
// statistics are recomputed by the caller, not trusted from the wire.
func (c *Client) FetchHemoglobinTrend(ctx context.Context, patientID string) (*analytics.HemoglobinTrend, error) {
	var trend analytics.HemoglobinTrend
	url := fmt.Sprintf("%s/patients/%s/hb-trend", c.backendURL, patientID)
	if err := c.do(ctx, "fetch hb trend", http.MethodGet, url, nil, &trend); err != nil {
		return nil, err
	}
	return &trend, nil
}

// FetchClinicalDecisions returns recorded decisions for a patient.
func (c *Client) FetchClinicalDecisions(ctx context.Context, patientID string) ([]decision.ClinicalDecision, error) {
	var list []decision.ClinicalDecision
	url := fmt.Sprintf("%s/patients/%s/decisions", c.backendURL, patientID)
	if err := c.do(ctx, "fetch decisions", http.MethodGet, url, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchAIPrediction posts the built request to the model service.
func (c *Client) FetchAIPrediction(ctx context.Context, req prediction.Request) (*prediction.AIPrediction, error) {
	var pred prediction.AIPrediction
	url := c.mlURL + "/predict/hb/"
	if err := c.do(ctx, "fetch prediction", http.MethodPost, url, req, &pred); err != nil {
		return nil, err
	}
	return &pred, nil
}

// FetchNotifications returns the notification feed. The backend wraps the
// list in a {"notifications": [...]} envelope.
func (c *Client) FetchNotifications(ctx context.Context) ([]notification.Notification, error) {
	var envelope struct {
		Notifications []notification.Notification `json:"notifications"`
	}
	url := c.backendURL + "/notifications"
	if err := c.do(ctx, "fetch notifications", http.MethodGet, url, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Notifications, nil
}

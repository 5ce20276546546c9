// Package backend provides typed call adapters for the authentication and
// secrets backend services. Adapters are transport-thin: they map request and
// response shapes, attach audit metadata, and flatten boundary-level identifier
// encodings. Domain errors travel inside the typed responses; the returned
// error is transport-level only. No retries happen at this layer.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// serviceName identifies the gateway in backend audit logs.
const serviceName = "envini-gate"

// call posts req as JSON to baseURL+path and decodes the response body into
// out. Every call carries a fresh request id and the gateway's service name
// so the backends can attribute audit events.
func call(ctx context.Context, client *http.Client, baseURL, path string, req, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Service-Name", serviceName)
	r.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := client.Do(r)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("call %s: backend returned status %d: %s", path, resp.StatusCode, bytes.TrimSpace(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// longID accepts a repository identifier either as a plain JSON number or as
// the structured 64-bit form {"low": ..., "high": ..., "unsigned": ...} some
// RPC stacks emit, and flattens it to an int64.
type longID int64

func (l *longID) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*l = longID(n)
		return nil
	}

	var structured struct {
		Low      uint32 `json:"low"`
		High     int32  `json:"high"`
		Unsigned bool   `json:"unsigned"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return fmt.Errorf("repository id is neither a number nor a structured long: %w", err)
	}
	*l = longID(int64(structured.High)<<32 | int64(structured.Low))
	return nil
}

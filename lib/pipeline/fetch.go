package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/url"
	"opspulse/lib/telemetry"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const DefaultTimeout = time.Second * 10

// Request identifies one fetchable resource. Immutable once constructed.
type Request struct {
	// Locator is an http(s) url or a local file path.
	Locator string
	// Query parameters appended to the locator on http fetches.
	Query url.Values
	// Credential is an opaque token. It is sent with the request and
	// never written to any sink.
	Credential string
	// CredentialParam names the query parameter carrying the credential.
	// When empty the credential is sent as a bearer Authorization header.
	CredentialParam string
	// Timeout bounds the single fetch attempt. Zero means DefaultTimeout.
	Timeout time.Duration
}

type Fetcher struct {
	http *resty.Client
}

func NewFetcher() *Fetcher {
	client := resty.New()
	telemetry.InstrumentResty(client, "opspulse.lib.pipeline.http")

	return &Fetcher{http: client}
}

// Fetch performs exactly one read of the requested resource and parses
// the body as JSON. It never retries.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (any, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	u, err := url.Parse(req.Locator)
	isHttp := err == nil && (u.Scheme == "http" || u.Scheme == "https")

	var payload any
	if isHttp {
		payload, err = f.fetchHttp(ctx, req)
	} else {
		payload, err = fetchFile(req.Locator)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return payload, nil
}

func (f *Fetcher) fetchHttp(ctx context.Context, req Request) (any, error) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := f.http.R().SetContext(ctx)
	for key, values := range req.Query {
		for _, v := range values {
			r.SetQueryParam(key, v)
		}
	}
	if req.Credential != "" {
		if req.CredentialParam != "" {
			r.SetQueryParam(req.CredentialParam, req.Credential)
		} else {
			r.SetAuthToken(req.Credential)
		}
	}

	res, err := r.Get(req.Locator)
	if err != nil {
		return nil, &Error{Stage: StageFetch, Kind: classifyNetErr(err), Err: err}
	}
	if res.IsError() {
		return nil, &Error{
			Stage:  StageFetch,
			Kind:   KindHttpStatus,
			Status: res.StatusCode(),
			Err:    errors.New(res.Status()),
		}
	}

	var payload any
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		return nil, &Error{Stage: StageFetch, Kind: KindMalformedResponse, Err: err}
	}
	return payload, nil
}

func fetchFile(path string) (any, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		kind := KindConnectionFailure
		switch {
		case errors.Is(err, fs.ErrNotExist):
			kind = KindNotFound
		case errors.Is(err, fs.ErrPermission):
			kind = KindPermissionDenied
		}
		return nil, &Error{Stage: StageFetch, Kind: kind, Err: err}
	}

	var payload any
	err = json.Unmarshal(contents, &payload)
	if err != nil {
		return nil, &Error{Stage: StageFetch, Kind: KindMalformedResponse, Err: err}
	}
	return payload, nil
}

func classifyNetErr(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return KindTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return KindTimeout
	}
	return KindConnectionFailure
}

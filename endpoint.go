package zuora

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sendgrid/zuora/soap"
)

// Fixed endpoints declared by the bundled WSDL documents.
const (
	ProductionEndpoint = "https://www.zuora.com/apps/services/a/40.0"
	SandboxEndpoint    = "https://apisandbox.zuora.com/apps/services/a/40.0"
)

var (
	//go:embed wsdl/production.wsdl
	productionWSDL []byte
	//go:embed wsdl/sandbox.wsdl
	sandboxWSDL []byte
)

// ProductionWSDL returns a copy of the bundled production WSDL document.
func ProductionWSDL() []byte {
	return bytes.Clone(productionWSDL)
}

// SandboxWSDL returns a copy of the bundled sandbox WSDL document.
func SandboxWSDL() []byte {
	return bytes.Clone(sandboxWSDL)
}

// WSDLKind identifies where a WSDL document comes from.
type WSDLKind int

const (
	WSDLProduction WSDLKind = iota
	WSDLSandbox
	WSDLCustom
)

func (k WSDLKind) String() string {
	switch k {
	case WSDLProduction:
		return "production"
	case WSDLSandbox:
		return "sandbox"
	case WSDLCustom:
		return "custom"
	default:
		return fmt.Sprintf("WSDLKind(%d)", int(k))
	}
}

// WSDLSource is the WSDL document a Config selects.
// Location is the path or URL for custom documents and empty for bundled ones.
type WSDLSource struct {
	Kind     WSDLKind
	Location string
}

func (s WSDLSource) String() string {
	if s.Kind == WSDLCustom {
		return s.Location
	}
	return s.Kind.String() + ".wsdl"
}

// ResolveWSDL picks the WSDL document for cfg. An explicit WSDL wins over the
// sandbox flag, which wins over the production default.
func ResolveWSDL(cfg Config) WSDLSource {
	if wsdl := strings.TrimSpace(cfg.WSDL); wsdl != "" {
		return WSDLSource{Kind: WSDLCustom, Location: wsdl}
	}
	if cfg.Sandbox {
		return WSDLSource{Kind: WSDLSandbox}
	}
	return WSDLSource{Kind: WSDLProduction}
}

// Endpoint reads the WSDL document and returns the SOAP address it declares.
// Remote documents are fetched with httpClient.
func (s WSDLSource) Endpoint(ctx context.Context, httpClient *http.Client) (string, error) {
	rc, err := s.open(ctx, httpClient)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	endpoint, err := soap.ReadWSDLEndpoint(rc)
	if err != nil {
		return "", fmt.Errorf("reading WSDL %s: %w", s, err)
	}
	return endpoint, nil
}

func (s WSDLSource) open(ctx context.Context, httpClient *http.Client) (io.ReadCloser, error) {
	switch s.Kind {
	case WSDLProduction:
		return io.NopCloser(bytes.NewReader(productionWSDL)), nil
	case WSDLSandbox:
		return io.NopCloser(bytes.NewReader(sandboxWSDL)), nil
	}

	if strings.HasPrefix(s.Location, "http://") || strings.HasPrefix(s.Location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
		if err != nil {
			return nil, fmt.Errorf("fetching WSDL %s: %w", s, err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching WSDL %s: %w", s, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching WSDL %s: %w", s, &soap.StatusError{StatusCode: resp.StatusCode, Status: resp.Status})
		}
		return resp.Body, nil
	}

	f, err := os.Open(strings.TrimPrefix(s.Location, "file://"))
	if err != nil {
		return nil, fmt.Errorf("opening WSDL: %w", err)
	}
	return f, nil
}

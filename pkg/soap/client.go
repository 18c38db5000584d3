// Package soap is a small SOAP 1.1 client: it builds request envelopes with
// etree and hands back the response body element for XPath-like lookups.
package soap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Behyna/bankgateway/pkg/httpclient"
	"github.com/beevik/etree"
)

const EnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"

var (
	ErrEmptyBody       = errors.New("SOAP_EMPTY_BODY")
	ErrMissingResponse = errors.New("SOAP_MISSING_RESPONSE")
)

// Fault is a soap:Fault returned by the remote service.
type Fault struct {
	Code   string
	String string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

// Param is one request element. Children turn it into a complex value.
type Param struct {
	Name     string
	Value    string
	Children []Param
}

func P(name, value string) Param {
	return Param{Name: name, Value: value}
}

func Group(name string, children ...Param) Param {
	return Param{Name: name, Children: children}
}

type Client struct {
	http      httpclient.HTTPClient
	endpoint  string
	namespace string
	// Qualified puts the operation namespace on every parameter (document/literal,
	// .NET services). Unqualified keeps a prefixed operation with bare children (Axis).
	qualified    bool
	actionPrefix string
}

type Option func(*Client)

func Qualified() Option {
	return func(c *Client) { c.qualified = true }
}

// WithActionPrefix sets the SOAPAction header to prefix+operation.
func WithActionPrefix(prefix string) Option {
	return func(c *Client) { c.actionPrefix = prefix }
}

func NewClient(http httpclient.HTTPClient, endpoint, namespace string, opts ...Option) *Client {
	c := &Client{http: http, endpoint: endpoint, namespace: namespace}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call invokes operation and returns the <operation>Response element.
func (c *Client) Call(ctx context.Context, operation string, params ...Param) (*Response, error) {
	doc := c.BuildEnvelope(operation, params...)
	payload, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Content-Type": "text/xml; charset=utf-8",
		"SOAPAction":   `"` + c.actionPrefix + operation + `"`,
	}

	resp, err := c.http.Post(ctx, c.endpoint, bytes.NewReader(payload), headers)
	if err != nil {
		return nil, err
	}

	body, readErr := httpclient.ReadBody(resp)
	// faults come back with HTTP 500, parse them before giving up on the status
	if len(body) == 0 {
		if readErr != nil {
			return nil, readErr
		}
		return nil, ErrEmptyBody
	}

	res, err := ParseResponse(body, operation)
	if err != nil {
		if readErr != nil {
			var fault *Fault
			if errors.As(err, &fault) {
				return nil, err
			}
			return nil, readErr
		}
		return nil, err
	}
	return res, nil
}

func (c *Client) BuildEnvelope(operation string, params ...Param) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	env := doc.CreateElement("soap:Envelope")
	env.CreateAttr("xmlns:soap", EnvelopeNamespace)
	env.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	env.CreateAttr("xmlns:xsd", "http://www.w3.org/2001/XMLSchema")

	body := env.CreateElement("soap:Body")

	var op *etree.Element
	if c.qualified {
		op = body.CreateElement(operation)
		op.CreateAttr("xmlns", c.namespace)
	} else {
		op = body.CreateElement("ns1:" + operation)
		op.CreateAttr("xmlns:ns1", c.namespace)
	}

	for _, p := range params {
		appendParam(op, p)
	}

	return doc
}

func appendParam(parent *etree.Element, p Param) {
	el := parent.CreateElement(p.Name)
	if len(p.Children) == 0 {
		el.SetText(p.Value)
		return
	}
	for _, child := range p.Children {
		appendParam(el, child)
	}
}

// Response wraps the operation response element.
type Response struct {
	Element *etree.Element
}

func ParseResponse(data []byte, operation string) (*Response, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse soap response: %w", err)
	}

	if fault := doc.FindElement("//*[local-name()='Fault']"); fault != nil {
		return nil, &Fault{
			Code:   childText(fault, "faultcode"),
			String: childText(fault, "faultstring"),
		}
	}

	el := doc.FindElement(fmt.Sprintf("//*[local-name()='%sResponse']", operation))
	if el == nil {
		return nil, ErrMissingResponse
	}
	return &Response{Element: el}, nil
}

// Text returns the text of the first descendant named name, ignoring namespaces.
func (r *Response) Text(name string) string {
	return childText(r.Element, name)
}

// Result returns the single return value: <operation>Result on .NET services,
// <return> or <result> on Axis ones.
func (r *Response) Result(operation string) string {
	for _, name := range []string{operation + "Result", "return", "result"} {
		if v := strings.TrimSpace(r.Text(name)); v != "" {
			return v
		}
	}
	return ""
}

func (r *Response) Has(name string) bool {
	return r.Element.FindElement(fmt.Sprintf(".//*[local-name()='%s']", name)) != nil
}

func childText(el *etree.Element, name string) string {
	found := el.FindElement(fmt.Sprintf(".//*[local-name()='%s']", name))
	if found == nil {
		return ""
	}
	return found.Text()
}

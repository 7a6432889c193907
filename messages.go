package zuora

import (
	"encoding/xml"
	"strings"

	"github.com/sendgrid/zuora/soap"
)

// XML namespaces used by the Zuora SOAP API.
const (
	APINamespace    = "http://api.zuora.com/"
	ObjectNamespace = "http://object.api.zuora.com/"
	FaultNamespace  = "http://fault.api.zuora.com/"
)

// Payload is the first element of a response body, kept undecoded.
// Use Decode to unmarshal it into a concrete type.
type Payload = soap.Element

// Field is a single named value. As an argument to Request it is sent in the
// API namespace; inside a Record it holds one object field.
type Field struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// Param returns a Field in the API namespace, for use as a Request argument.
func Param(name, value string) Field {
	return Field{XMLName: xml.Name{Space: APINamespace, Local: name}, Value: value}
}

// RawXML is sent verbatim inside the operation element when passed to Request.
type RawXML string

// operation is the body element of a generic Request.
type operation struct {
	XMLName xml.Name
	Args    []interface{}
	Raw     string `xml:",innerxml"`
}

func newOperation(name string, args []interface{}) *operation {
	op := &operation{XMLName: xml.Name{Space: APINamespace, Local: name}}
	for _, arg := range args {
		switch a := arg.(type) {
		case RawXML:
			op.Raw += string(a)
		case nil:
		default:
			op.Args = append(op.Args, a)
		}
	}
	return op
}

type sessionHeader struct {
	XMLName xml.Name `xml:"http://api.zuora.com/ SessionHeader"`
	Session string   `xml:"http://api.zuora.com/ session"`
}

type loginRequest struct {
	XMLName  xml.Name `xml:"http://api.zuora.com/ login"`
	Username string   `xml:"http://api.zuora.com/ username"`
	Password string   `xml:"http://api.zuora.com/ password"`
}

type loginResponse struct {
	XMLName xml.Name `xml:"loginResponse"`
	Result  struct {
		Session   string `xml:"Session"`
		ServerURL string `xml:"ServerUrl"`
	} `xml:"result"`
}

type logoutRequest struct {
	XMLName xml.Name `xml:"http://api.zuora.com/ logout"`
}

type queryRequest struct {
	XMLName     xml.Name `xml:"http://api.zuora.com/ query"`
	QueryString string   `xml:"http://api.zuora.com/ queryString"`
}

type queryMoreRequest struct {
	XMLName      xml.Name `xml:"http://api.zuora.com/ queryMore"`
	QueryLocator string   `xml:"http://api.zuora.com/ queryLocator"`
}

type queryResponse struct {
	Result QueryResult `xml:"result"`
}

// QueryResult is one page of ZOQL query results.
type QueryResult struct {
	Done bool `xml:"done"`
	// QueryLocator is passed to QueryMore to fetch the next page while Done is false.
	QueryLocator string   `xml:"queryLocator"`
	Size         int      `xml:"size"`
	Records      []Record `xml:"records"`
}

// Record is one zObject returned by a query.
type Record struct {
	// Type is the xsi:type attribute as sent, such as "ns2:Account".
	// The prefix is left unresolved and depends on the server; use Object for the type name.
	Type   string  `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr"`
	Fields []Field `xml:",any"`
}

// Get returns the value of the named field.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.XMLName.Local == name {
			return f.Value, true
		}
	}
	return "", false
}

// Object returns the record's type without its namespace prefix, such as "Account".
func (r Record) Object() string {
	if i := strings.LastIndexByte(r.Type, ':'); i >= 0 {
		return r.Type[i+1:]
	}
	return r.Type
}

// ID returns the record's Id field.
func (r Record) ID() string {
	id, _ := r.Get("Id")
	return id
}

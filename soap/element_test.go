package soap

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementDecode(t *testing.T) {
	in := `<ns1:queryResponse xmlns:ns1="http://api.zuora.com/" xmlns:ns2="http://object.api.zuora.com/" batch="1">` +
		`<ns1:result><ns1:done>true</ns1:done><ns1:size>1</ns1:size>` +
		`<ns1:records><ns2:Id>4028e4</ns2:Id></ns1:records></ns1:result></ns1:queryResponse>`

	var el Element
	require.NoError(t, xml.Unmarshal([]byte(in), &el))
	assert.Equal(t, xml.Name{Space: "http://api.zuora.com/", Local: "queryResponse"}, el.XMLName)

	var out struct {
		Batch  string `xml:"batch,attr"`
		Result struct {
			Done    bool `xml:"http://api.zuora.com/ done"`
			Size    int  `xml:"http://api.zuora.com/ size"`
			Records []struct {
				ID string `xml:"http://object.api.zuora.com/ Id"`
			} `xml:"http://api.zuora.com/ records"`
		} `xml:"http://api.zuora.com/ result"`
	}
	require.NoError(t, el.Decode(&out))

	assert.Equal(t, "1", out.Batch)
	assert.True(t, out.Result.Done)
	assert.Equal(t, 1, out.Result.Size)
	require.Len(t, out.Result.Records, 1)
	assert.Equal(t, "4028e4", out.Result.Records[0].ID)
}

type exampleResult struct {
	XMLName xml.Name `xml:"http://api.zuora.com/ exampleResponse"`
	Type    string   `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr"`
	Result  struct {
		ID string `xml:"http://api.zuora.com/ Id"`
	} `xml:"http://api.zuora.com/ result"`
}

type elementScopeTest struct {
	in   string
	id   string
	typ  string
	name xml.Name
}

var elementScopeTests = []elementScopeTest{
	// Prefixes declared on the envelope only.
	{
		in: `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns1="http://api.zuora.com/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
			`<soapenv:Body><ns1:exampleResponse xsi:type="ns1:ExampleResult"><ns1:result><ns1:Id>X1</ns1:Id></ns1:result></ns1:exampleResponse></soapenv:Body>` +
			`</soapenv:Envelope>`,
		id:  "X1",
		typ: "ns1:ExampleResult",
	},
	// Prefixes split between the envelope and the body.
	{
		in: `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
			`<soapenv:Body xmlns:api="http://api.zuora.com/"><api:exampleResponse xsi:type="api:ExampleResult"><api:result><api:Id>X2</api:Id></api:result></api:exampleResponse></soapenv:Body>` +
			`</soapenv:Envelope>`,
		id:  "X2",
		typ: "api:ExampleResult",
	},
	// Default namespace declared on the body.
	{
		in: `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">` +
			`<soapenv:Body xmlns="http://api.zuora.com/"><exampleResponse><result><Id>X3</Id></result></exampleResponse></soapenv:Body>` +
			`</soapenv:Envelope>`,
		id: "X3",
	},
	// A declaration on the element shadows the envelope's binding.
	{
		in: `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns1="urn:unused">` +
			`<soapenv:Body><ns1:exampleResponse xmlns:ns1="http://api.zuora.com/"><ns1:result><ns1:Id>X4</ns1:Id></ns1:result></ns1:exampleResponse></soapenv:Body>` +
			`</soapenv:Envelope>`,
		id: "X4",
	},
}

func TestElementDecodeInheritsNamespaces(t *testing.T) {
	for i, test := range elementScopeTests {
		el := &Element{}
		require.NoError(t, xml.Unmarshal([]byte(test.in), NewEnvelope(el)), "#%d", i)
		assert.Equal(t, xml.Name{Space: zuoraNS, Local: "exampleResponse"}, el.XMLName, "#%d", i)

		var out exampleResult
		require.NoError(t, el.Decode(&out), "#%d", i)
		assert.Equal(t, test.id, out.Result.ID, "#%d", i)
		assert.Equal(t, test.typ, out.Type, "#%d", i)
	}
}

func TestElementDecodePrefixedAttrWithoutDeclaration(t *testing.T) {
	el := &Element{
		XMLName: xml.Name{Space: zuoraNS, Local: "exampleResponse"},
		Attrs: []xml.Attr{
			{Name: xml.Name{Space: "http://www.w3.org/2001/XMLSchema-instance", Local: "type"}, Value: "ExampleResult"},
		},
		Inner: `<result xmlns="http://api.zuora.com/"><Id>X5</Id></result>`,
	}

	var out exampleResult
	require.NoError(t, el.Decode(&out))
	assert.Equal(t, "ExampleResult", out.Type)
	assert.Equal(t, "X5", out.Result.ID)
}

func TestEnvelopeDecodeRejectsOtherRoot(t *testing.T) {
	err := xml.Unmarshal([]byte(`<Body xmlns="http://schemas.xmlsoap.org/soap/envelope/"/>`), NewEnvelope(&Element{}))
	var unmarshalErr xml.UnmarshalError
	assert.ErrorAs(t, err, &unmarshalErr)
}

func TestElementDecodeWithoutScopeUsesOwnNamespace(t *testing.T) {
	el := &Element{
		XMLName: xml.Name{Space: zuoraNS, Local: "exampleResponse"},
		Inner:   `<result><Id>X6</Id></result>`,
	}

	var out exampleResult
	require.NoError(t, el.Decode(&out))
	assert.Equal(t, "X6", out.Result.ID)
}

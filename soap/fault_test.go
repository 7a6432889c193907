package soap

import (
	"encoding/xml"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var faultName = xml.Name{Space: soapEnvNS, Local: "Fault"}

type limitFaultDetail struct {
	FaultCode string `xml:"FaultCode"`
	Limit     int    `xml:"Limit"`
}

type faultDecodeTest struct {
	in        string
	detail    interface{}
	out       *Fault
	errString string
	rawDetail string
	err       error
}

var faultDecodeTests = []faultDecodeTest{
	{
		in: `<Fault xmlns="http://schemas.xmlsoap.org/soap/envelope/">
			<faultcode>soapenv:Server</faultcode>
			<faultstring>Internal error</faultstring>
			<faultactor>https://www.zuora.com</faultactor>
		</Fault>`,
		out: &Fault{
			XMLName: faultName,
			Code:    "soapenv:Server",
			String:  "Internal error",
			Actor:   "https://www.zuora.com",
		},
		errString: "soap fault: soapenv:Server (Internal error)",
	},
	{
		in: `<Fault xmlns="http://schemas.xmlsoap.org/soap/envelope/">
			<faultcode>fns:INVALID_VALUE</faultcode>
			<faultstring>Invalid login</faultstring>
			<detail>
				<fns:LoginFault xmlns:fns="http://fault.api.zuora.com/">
					<fns:FaultCode>INVALID_VALUE</fns:FaultCode>
					<fns:FaultMessage>Invalid login. User name and password do not match.</fns:FaultMessage>
				</fns:LoginFault>
			</detail>
		</Fault>`,
		detail: &loginFaultDetail{},
		out: &Fault{
			XMLName: faultName,
			Code:    "fns:INVALID_VALUE",
			String:  "Invalid login",
			DetailInternal: &faultDetail{
				Content: &loginFaultDetail{
					XMLName:      xml.Name{Space: "http://fault.api.zuora.com/", Local: "LoginFault"},
					FaultCode:    "INVALID_VALUE",
					FaultMessage: "Invalid login. User name and password do not match.",
				},
			},
		},
		errString: "soap fault: fns:INVALID_VALUE (Invalid login)",
	},
	{
		in: `<Fault xmlns="http://schemas.xmlsoap.org/soap/envelope/">
			<faultcode>fns:INVALID_VALUE</faultcode>
			<faultstring>Invalid login</faultstring>
			<detail>
				<fns:LoginFault xmlns:fns="http://fault.api.zuora.com/" />
			</detail>
		</Fault>`,
		out: &Fault{
			XMLName: faultName,
			Code:    "fns:INVALID_VALUE",
			String:  "Invalid login",
			DetailInternal: &faultDetail{
				raw: `<fns:LoginFault xmlns:fns="http://fault.api.zuora.com/" />`,
			},
		},
		errString: "soap fault: fns:INVALID_VALUE (Invalid login)",
		rawDetail: `<fns:LoginFault xmlns:fns="http://fault.api.zuora.com/" />`,
	},
	{
		in: `<Fault xmlns="http://schemas.xmlsoap.org/soap/envelope/">
			<faultcode>fns:REQUEST_EXCEEDED_LIMIT</faultcode>
			<faultstring>Too many requests</faultstring>
			<detail>
				<fns:UnexpectedErrorFault xmlns:fns="http://fault.api.zuora.com/">
					<fns:FaultCode>REQUEST_EXCEEDED_LIMIT</fns:FaultCode>
					<fns:Limit>forty</fns:Limit>
				</fns:UnexpectedErrorFault>
			</detail>
		</Fault>`,
		detail: &limitFaultDetail{},
		err:    &strconv.NumError{Func: "ParseInt", Num: "forty", Err: strconv.ErrSyntax},
	},
	{
		in: `<Fault xmlns="http://schemas.xmlsoap.org/soap/envelope/">
			<faultcode>fns:INVALID_VALUE</faultcode>
			<detail>
				<fns:LoginFault xmlns:fns="http://fault.api.zuora.com/" code="1
			</detail>
		</Fault>`,
		detail: &loginFaultDetail{},
		err:    &xml.SyntaxError{},
	},
}

func TestFaultDecode(t *testing.T) {
	for i, test := range faultDecodeTests {
		f := NewFault()
		if test.detail != nil {
			f = NewFaultWithDetail(test.detail)
		}

		err := xml.NewDecoder(strings.NewReader(test.in)).Decode(f)
		if test.err != nil {
			if err == nil {
				t.Errorf("#%d: decoded without error, want %T", i, test.err)
				continue
			}
			assert.IsType(t, test.err, err, "#%d", i)
			continue
		}
		if err != nil {
			t.Errorf("#%d: %v", i, err)
			continue
		}

		assert.Equal(t, test.out, f, "#%d", i)
		if f.Error() != test.errString {
			t.Errorf("#%d: Error() = %q, want %q", i, f.Error(), test.errString)
		}
		if f.RawDetail() != test.rawDetail {
			t.Errorf("#%d: RawDetail() = %q, want %q", i, f.RawDetail(), test.rawDetail)
		}
		if test.detail != nil && f.Detail() != test.detail {
			t.Errorf("#%d: Detail() returned %p, want the supplied %p", i, f.Detail(), test.detail)
		}
	}
}

func TestFaultDetailWithoutElement(t *testing.T) {
	f := NewFault()
	assert.Nil(t, f.Detail())
	assert.Empty(t, f.RawDetail())
}

func TestFaultLocalCode(t *testing.T) {
	for _, tt := range []struct {
		code string
		want string
	}{
		{code: "fns:INVALID_VALUE", want: "INVALID_VALUE"},
		{code: "soapenv:Server", want: "Server"},
		{code: "Client", want: "Client"},
		{code: "", want: ""},
	} {
		t.Run(tt.code, func(t *testing.T) {
			f := &Fault{Code: tt.code}
			if got := f.LocalCode(); got != tt.want {
				t.Errorf("LocalCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Package zuora is a client for the Zuora SOAP API.
//
// A Client is built from a Config and talks to the endpoint declared by the
// WSDL the Config selects: an explicit WSDL path or URL, else the bundled
// sandbox document when Sandbox is set, else the bundled production document.
//
//	c := zuora.New(zuora.Config{Username: user, Password: pass, Sandbox: true})
//	if err := c.Authenticate(ctx); err != nil {
//		...
//	}
//	res, err := c.Query(ctx, "select Id, Name from Account")
//
// Every failure is reported as a *Fault whose Origin tells whether the call
// never got an answer, was refused by Zuora, or was never sent.
package zuora

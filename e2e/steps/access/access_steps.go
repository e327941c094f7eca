package access

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetContentID() string
}

// RegisterSteps registers paywall step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &accessSteps{tc: tc}

	ctx.Step(`^I request access without an identity proof$`, steps.requestAnonymous)
	ctx.Step(`^I request access with identity proof "([^"]*)"$`, steps.requestWithProof)
	ctx.Step(`^I pay for the content as "([^"]*)" with receipt "([^"]*)"$`, steps.pay)
	ctx.Step(`^I request the audit trail$`, steps.audit)
}

type accessSteps struct {
	tc TestContext
}

func (s *accessSteps) requestAnonymous(ctx context.Context) error {
	return s.tc.GET("/access/"+s.tc.GetContentID(), nil)
}

func (s *accessSteps) requestWithProof(ctx context.Context, proof string) error {
	return s.tc.GET("/access/"+s.tc.GetContentID(), map[string]string{"X-Proof": proof})
}

func (s *accessSteps) pay(ctx context.Context, payer, receipt string) error {
	if err := s.tc.POST("/pay/"+s.tc.GetContentID(), map[string]string{
		"payer":   payer,
		"receipt": receipt,
	}); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 && status != 402 && status != 404 {
		return fmt.Errorf("unexpected pay status %d", status)
	}
	return nil
}

func (s *accessSteps) audit(ctx context.Context) error {
	return s.tc.GET("/audit/"+s.tc.GetContentID(), nil)
}

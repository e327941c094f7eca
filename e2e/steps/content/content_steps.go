package content

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	SetContentID(id string)
}

// RegisterSteps registers content upload step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &contentSteps{tc: tc}

	ctx.Step(`^I upload "([^"]*)" with content hash "([^"]*)" and proof job "([^"]*)"$`, steps.upload)
	ctx.Step(`^content "([^"]*)" has been verified with hash "([^"]*)"$`, steps.verifiedContent)
	ctx.Step(`^I save the content id$`, steps.saveContentID)
	ctx.Step(`^the content id "([^"]*)" is unknown$`, steps.unknownContentID)
}

type contentSteps struct {
	tc TestContext
}

func (s *contentSteps) upload(ctx context.Context, reference, contentHash, jobID string) error {
	return s.tc.POST("/upload", map[string]any{
		"reference":   reference,
		"contentHash": contentHash,
		"proofJobId":  jobID,
	})
}

// verifiedContent relies on the dev prover completing "digest-<hash>" jobs immediately.
func (s *contentSteps) verifiedContent(ctx context.Context, reference, contentHash string) error {
	if err := s.upload(ctx, reference, contentHash, "digest-"+contentHash); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("upload of %s failed with status %d", reference, status)
	}
	verified, err := s.tc.GetResponseField("verified")
	if err != nil {
		return err
	}
	if verified != true {
		return fmt.Errorf("content %s was not verified", reference)
	}
	return s.saveContentID(ctx)
}

func (s *contentSteps) saveContentID(ctx context.Context) error {
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	idStr, ok := id.(string)
	if !ok || idStr == "" {
		return fmt.Errorf("response id is not a string: %v", id)
	}
	s.tc.SetContentID(idStr)
	return nil
}

func (s *contentSteps) unknownContentID(ctx context.Context, id string) error {
	s.tc.SetContentID(id)
	return nil
}

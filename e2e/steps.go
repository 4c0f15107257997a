package e2e

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/cucumber/godog"

	"nftgate/internal/gate"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the registration API is running$`, tc.registrationAPIIsRunning)
	ctx.Step(`^wallet "([^"]*)" is already registered$`, tc.walletIsAlreadyRegistered)

	// Gate steps
	ctx.Step(`^wallet "([^"]*)" connects$`, tc.walletConnects)
	ctx.Step(`^the wallet disconnects$`, tc.walletDisconnects)
	ctx.Step(`^the user submits the form with:$`, tc.userSubmitsForm)
	ctx.Step(`^the user submits the form with only the name "([^"]*)"$`, tc.userSubmitsPartialForm)
	ctx.Step(`^the gate should reach "([^"]*)"$`, tc.gateShouldReach)
	ctx.Step(`^the gate should have gone through "([^"]*)"$`, tc.gateShouldHaveGoneThrough)
	ctx.Step(`^the registration form should be shown$`, tc.formShouldBeShown)
	ctx.Step(`^the registration form should never have been shown$`, tc.formShouldNeverHaveBeenShown)
	ctx.Step(`^the registration form should be empty$`, tc.formShouldBeEmpty)
	ctx.Step(`^the form should report errors for "([^"]*)"$`, tc.formShouldReportErrors)
	ctx.Step(`^the claim action should be enabled$`, tc.claimShouldBeEnabled)
	ctx.Step(`^the claim action should be disabled$`, tc.claimShouldBeDisabled)
	ctx.Step(`^the status of "([^"]*)" should have been checked (\d+) times?$`, tc.statusShouldHaveBeenChecked)

	// Request steps
	ctx.Step(`^I register wallet "([^"]*)" with:$`, tc.registerWalletWith)
	ctx.Step(`^I check the status of wallet "([^"]*)"$`, tc.checkStatusOf)
	ctx.Step(`^(\d+) registrations for wallet "([^"]*)" are sent at once$`, tc.concurrentRegistrations)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^exactly one registration should succeed and (\d+) should conflict$`, tc.exactlyOneShouldSucceed)
}

func (tc *TestContext) registrationAPIIsRunning(ctx context.Context) error {
	if err := tc.GET("/health/live"); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(ctx, http.StatusOK)
}

func defaultRegistration(wallet string) map[string]string {
	return map[string]string{
		"walletAddress": wallet,
		"name":          "Existing Holder",
		"dob":           "1988-03-14",
		"gender":        "other",
		"maritalStatus": "single",
	}
}

func (tc *TestContext) walletIsAlreadyRegistered(ctx context.Context, wallet string) error {
	if err := tc.POST("/api/register", defaultRegistration(wallet)); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(ctx, http.StatusCreated)
}

func (tc *TestContext) walletConnects(ctx context.Context, wallet string) error {
	return tc.Gate.Connect(wallet)
}

func (tc *TestContext) walletDisconnects(ctx context.Context) error {
	if err := tc.Gate.Disconnect(); err != nil {
		return err
	}
	_, err := tc.Await(gate.Disconnected)
	return err
}

func formFromTable(table *godog.Table) (gate.Form, error) {
	var form gate.Form
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return form, fmt.Errorf("form rows need a field and a value")
		}
		value := row.Cells[1].Value
		switch field := row.Cells[0].Value; field {
		case "name":
			form.Name = value
		case "dob":
			form.DOB = value
		case "gender":
			form.Gender = value
		case "maritalStatus":
			form.MaritalStatus = value
		default:
			return form, fmt.Errorf("unknown form field %q", field)
		}
	}
	return form, nil
}

func (tc *TestContext) userSubmitsForm(ctx context.Context, table *godog.Table) error {
	form, err := formFromTable(table)
	if err != nil {
		return err
	}
	return tc.Gate.Submit(form)
}

// userSubmitsPartialForm leaves the other fields blank, so validation keeps
// the input on screen.
func (tc *TestContext) userSubmitsPartialForm(ctx context.Context, name string) error {
	err := tc.Gate.Submit(gate.Form{Name: name})
	var formErr *gate.FormError
	if !errors.As(err, &formErr) {
		return fmt.Errorf("expected a form error, got %v", err)
	}
	return nil
}

func parsePhase(name string) (gate.Phase, error) {
	for p := gate.Disconnected; p <= gate.Error; p++ {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown gate phase %q", name)
}

func (tc *TestContext) gateShouldReach(ctx context.Context, name string) error {
	phase, err := parsePhase(name)
	if err != nil {
		return err
	}
	_, err = tc.Await(phase)
	return err
}

func (tc *TestContext) gateShouldHaveGoneThrough(ctx context.Context, sequence string) error {
	var want []gate.Phase
	for _, name := range strings.Split(sequence, "->") {
		phase, err := parsePhase(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		want = append(want, phase)
	}
	if got := tc.Phases(); !slices.Equal(got, want) {
		return fmt.Errorf("expected phases %v but got %v", want, got)
	}
	return nil
}

func (tc *TestContext) formShouldBeShown(ctx context.Context) error {
	if st := tc.Gate.State(); !st.Phase.ShowsForm() {
		return fmt.Errorf("form hidden in %s", st.Phase)
	}
	return nil
}

func (tc *TestContext) formShouldNeverHaveBeenShown(ctx context.Context) error {
	for _, p := range tc.Phases() {
		if p.ShowsForm() {
			return fmt.Errorf("form was shown in %s", p)
		}
	}
	return nil
}

func (tc *TestContext) formShouldBeEmpty(ctx context.Context) error {
	st := tc.Gate.State()
	if st.Form != (gate.Form{}) {
		return fmt.Errorf("stale form data: %+v", st.Form)
	}
	if len(st.FieldErrors) > 0 || st.Message != "" {
		return fmt.Errorf("stale errors: %v %q", st.FieldErrors, st.Message)
	}
	return nil
}

func (tc *TestContext) formShouldReportErrors(ctx context.Context, fields string) error {
	st := tc.Gate.State()
	for _, field := range strings.Split(fields, ",") {
		field = strings.TrimSpace(field)
		if _, ok := st.FieldErrors[field]; !ok {
			return fmt.Errorf("no error for %s in %v", field, st.FieldErrors)
		}
	}
	return nil
}

func (tc *TestContext) claimShouldBeEnabled(ctx context.Context) error {
	st := tc.Gate.State()
	if !st.Phase.CanClaim() {
		return fmt.Errorf("claim disabled in %s", st.Phase)
	}
	if err := tc.Gate.Claim(ctx); err != nil {
		return fmt.Errorf("claim: %w", err)
	}
	if claimed := tc.claimer.Claimed(); !slices.Contains(claimed, st.Wallet) {
		return fmt.Errorf("claim for %s not performed, got %v", st.Wallet, claimed)
	}
	return nil
}

func (tc *TestContext) claimShouldBeDisabled(ctx context.Context) error {
	if st := tc.Gate.State(); st.Phase.CanClaim() {
		return fmt.Errorf("claim enabled in %s", st.Phase)
	}
	if err := tc.Gate.Claim(ctx); !errors.Is(err, gate.ErrClaimNotAllowed) {
		return fmt.Errorf("expected claim to be refused, got %v", err)
	}
	return nil
}

func (tc *TestContext) statusShouldHaveBeenChecked(ctx context.Context, wallet string, times int) error {
	if got := tc.api.StatusCalls(wallet); got != times {
		return fmt.Errorf("expected %d status checks for %s but got %d", times, wallet, got)
	}
	return nil
}

func (tc *TestContext) registerWalletWith(ctx context.Context, wallet string, table *godog.Table) error {
	body := map[string]string{"walletAddress": wallet}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("registration rows need a field and a value")
		}
		body[row.Cells[0].Value] = row.Cells[1].Value
	}
	return tc.POST("/api/register", body)
}

func (tc *TestContext) checkStatusOf(ctx context.Context, wallet string) error {
	return tc.GET("/api/user-status?walletAddress=" + url.QueryEscape(wallet))
}

func (tc *TestContext) concurrentRegistrations(ctx context.Context, n int, wallet string) error {
	statuses := make([]int, n)
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			body := defaultRegistration(wallet)
			body["name"] = fmt.Sprintf("Tab %d", i+1)
			statuses[i], errs[i] = tc.postStatus("/api/register", body)
		}()
	}
	close(start)
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return err
	}
	tc.concurrentStatuses = statuses
	return nil
}

// postStatus sends a POST without touching LastResponse, so it is safe to
// call from several goroutines.
func (tc *TestContext) postStatus(path string, body any) (int, error) {
	req, err := newJSONRequest(path, tc.BaseURL, body)
	if err != nil {
		return 0, err
	}
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make request: %w", err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (tc *TestContext) exactlyOneShouldSucceed(ctx context.Context, conflicts int) error {
	created, conflicted := 0, 0
	for _, status := range tc.concurrentStatuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			return fmt.Errorf("unexpected status %d in %v", status, tc.concurrentStatuses)
		}
	}
	if created != 1 || conflicted != conflicts {
		return fmt.Errorf("expected 1 created and %d conflicts, got %v", conflicts, tc.concurrentStatuses)
	}
	return nil
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no request was made")
	}
	if tc.LastResponse.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d but got %d", expectedStatus, tc.LastResponse.StatusCode)
	}
	return nil
}

func (tc *TestContext) responseShouldContain(ctx context.Context, field string) error {
	if !tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain field: %s\nResponse: %s", field, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	actualValue, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

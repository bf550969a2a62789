package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/internal/observability"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

// actionTimeout bounds a single CDP action round-trip.
const actionTimeout = 20 * time.Second

// extractCap is the maximum number of non-empty values extract returns.
const extractCap = 10

// defaultScrollFraction is the viewport fraction scrolled when no amount is
// given.
const defaultScrollFraction = 0.6

// Browser executes actions against a running Chrome instance over the
// DevTools Protocol.
//
// Chrome must be started with --remote-debugging-port; the executor attaches
// through a remote allocator and keeps one chromedp context per tab ID.
// Safety policy violations (blocked origins, restricted selectors) produce
// terminal error observations. Other CDP failures are recoverable: the
// planner sees the error observation and can try something else.
type Browser struct {
	policy config.SafetyPolicy
	logger *observability.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu   sync.Mutex
	tabs map[string]*tab
}

type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// BrowserConfig configures a Browser executor.
type BrowserConfig struct {
	// DebugURL is the Chrome DevTools endpoint, e.g. "http://localhost:9222".
	DebugURL string

	// Policy bounds waits and forbids blocked origins and restricted
	// selectors.
	Policy config.SafetyPolicy

	// Logger receives per-action debug records. Optional.
	Logger *observability.Logger
}

// NewBrowser creates a browser executor attached to a remote Chrome.
func NewBrowser(cfg BrowserConfig) (*Browser, error) {
	if cfg.DebugURL == "" {
		return nil, fmt.Errorf("browser: debug URL is required")
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), cfg.DebugURL)

	return &Browser{
		policy:      cfg.Policy,
		logger:      cfg.Logger,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabs:        make(map[string]*tab),
	}, nil
}

// Close detaches every tab context and the allocator.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, t := range b.tabs {
		t.cancel()
		delete(b.tabs, id)
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
}

// Execute dispatches the action to its handler.
func (b *Browser) Execute(ctx context.Context, req *Request) (*Result, error) {
	if b.logger != nil {
		b.logger.Debug(ctx, "executing browser action", "tool", req.Action.Type)
	}

	switch req.Action.Type {
	case "navigate":
		return b.navigate(ctx, req.Action)
	case "click":
		return b.click(ctx, req.Action)
	case "type":
		return b.typeText(ctx, req.Action)
	case "wait":
		return b.wait(ctx, req.Action)
	case "scroll":
		return b.scroll(ctx, req.Action)
	case "extract":
		return b.extract(ctx, req.Action)
	case "finish":
		summary := stringParam(req.Action.Params, "summary")
		result := models.ObservationSuccess
		if stringParam(req.Action.Params, "status") == string(models.FinishFailed) {
			result = models.ObservationError
		}
		return &Result{
			Observation:  models.Observation{Result: result, Message: summary},
			DidTerminate: true,
			Summary:      summary,
		}, nil
	default:
		return errorResult(fmt.Sprintf("Unknown action type %q.", req.Action.Type)), nil
	}
}

func (b *Browser) navigate(ctx context.Context, action models.Action) (*Result, error) {
	url := stringParam(action.Params, "url")
	if b.policy.IsBlockedOrigin(url) {
		return terminalErrorResult(fmt.Sprintf("Navigation to %q is blocked by safety policy.", url)), nil
	}

	tabCtx, cancel, err := b.tabContext(ctx, stringParam(action.Params, "tabId"))
	if err != nil {
		return terminalErrorResult(err.Error()), nil
	}
	defer cancel()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if waitFor := stringParam(action.Params, "waitFor"); waitFor != "" {
		actions = append(actions, chromedp.WaitVisible(waitFor, chromedp.ByQuery))
	}

	var finalURL, title string
	actions = append(actions, chromedp.Location(&finalURL), chromedp.Title(&title))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return errorResult(fmt.Sprintf("Navigation failed: %v", err)), nil
	}

	return successResult(fmt.Sprintf("Navigated to %s", finalURL), map[string]any{
		"url":   finalURL,
		"title": title,
	}), nil
}

func (b *Browser) click(ctx context.Context, action models.Action) (*Result, error) {
	selector := stringParam(action.Params, "selector")
	if b.policy.IsRestrictedSelector(selector) {
		return terminalErrorResult(fmt.Sprintf("Selector %q is restricted by safety policy.", selector)), nil
	}

	tabCtx, cancel, err := b.tabContext(ctx, stringParam(action.Params, "tabId"))
	if err != nil {
		return terminalErrorResult(err.Error()), nil
	}
	defer cancel()

	actions := []chromedp.Action{chromedp.WaitVisible(selector, chromedp.ByQuery)}
	switch button := stringParam(action.Params, "button"); button {
	case "", "left":
		actions = append(actions, chromedp.Click(selector, chromedp.ByQuery))
	case "right", "middle":
		// chromedp.Click is left-button only; other buttons go through a
		// synthesized mouse event on the matched node.
		actions = append(actions, mouseClick(selector, button))
	default:
		return errorResult(fmt.Sprintf("Unknown mouse button %q.", button)), nil
	}
	if boolParam(action.Params, "waitForNavigation") {
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return errorResult(fmt.Sprintf("Click failed: %v", err)), nil
	}

	return successResult(fmt.Sprintf("Clicked %s", selector), nil), nil
}

func (b *Browser) typeText(ctx context.Context, action models.Action) (*Result, error) {
	selector := stringParam(action.Params, "selector")
	if b.policy.IsRestrictedSelector(selector) {
		return terminalErrorResult(fmt.Sprintf("Selector %q is restricted by safety policy.", selector)), nil
	}

	tabCtx, cancel, err := b.tabContext(ctx, stringParam(action.Params, "tabId"))
	if err != nil {
		return terminalErrorResult(err.Error()), nil
	}
	defer cancel()

	text := stringParam(action.Params, "text")

	actions := []chromedp.Action{chromedp.WaitVisible(selector, chromedp.ByQuery)}
	if boolParam(action.Params, "clear") {
		actions = append(actions, chromedp.Clear(selector, chromedp.ByQuery))
	}
	actions = append(actions, chromedp.SendKeys(selector, text, chromedp.ByQuery))
	if boolParam(action.Params, "submit") {
		actions = append(actions, chromedp.SendKeys(selector, kb.Enter, chromedp.ByQuery))
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return errorResult(fmt.Sprintf("Type failed: %v", err)), nil
	}

	return successResult(fmt.Sprintf("Typed into %s", selector), nil), nil
}

func (b *Browser) wait(ctx context.Context, action models.Action) (*Result, error) {
	// The selector wait is preferred when both forms are present.
	if until := stringParam(action.Params, "until"); until != "" {
		timeout := b.policy.ClampWait(durationParam(action.Params, "timeoutMs", b.policy.MaxWait))

		tabCtx, cancel, err := b.tabContext(ctx, stringParam(action.Params, "tabId"))
		if err != nil {
			return terminalErrorResult(err.Error()), nil
		}
		defer cancel()

		waitCtx, waitCancel := context.WithTimeout(tabCtx, timeout)
		defer waitCancel()

		if err := chromedp.Run(waitCtx, chromedp.WaitVisible(until, chromedp.ByQuery)); err != nil {
			return errorResult(fmt.Sprintf("Wait for %q failed: %v", until, err)), nil
		}
		return successResult(fmt.Sprintf("Element %s appeared", until), nil), nil
	}

	sleep := b.policy.ClampWait(durationParam(action.Params, "ms", 0))
	select {
	case <-ctx.Done():
		return errorResult("Wait interrupted."), nil
	case <-time.After(sleep):
	}
	return successResult(fmt.Sprintf("Waited %d ms", sleep.Milliseconds()), nil), nil
}

func (b *Browser) scroll(ctx context.Context, action models.Action) (*Result, error) {
	direction := strings.ToLower(stringParam(action.Params, "direction"))
	script, err := scrollScript(direction, numberParam(action.Params, "amount", defaultScrollFraction))
	if err != nil {
		return errorResult(err.Error()), nil
	}

	tabCtx, cancel, ctxErr := b.tabContext(ctx, stringParam(action.Params, "tabId"))
	if ctxErr != nil {
		return terminalErrorResult(ctxErr.Error()), nil
	}
	defer cancel()

	var actions []chromedp.Action
	if selector := stringParam(action.Params, "selector"); selector != "" {
		actions = append(actions, chromedp.ScrollIntoView(selector, chromedp.ByQuery))
	}

	var offset float64
	actions = append(actions, chromedp.Evaluate(script, &offset))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return errorResult(fmt.Sprintf("Scroll failed: %v", err)), nil
	}

	return successResult(fmt.Sprintf("Scrolled %s", direction), map[string]any{
		"scrollY": offset,
	}), nil
}

func (b *Browser) extract(ctx context.Context, action models.Action) (*Result, error) {
	attribute := stringParam(action.Params, "attribute")
	selector := stringParam(action.Params, "selector")
	if selector == "" {
		selector = "*"
	}

	tabCtx, cancel, err := b.tabContext(ctx, stringParam(action.Params, "tabId"))
	if err != nil {
		return terminalErrorResult(err.Error()), nil
	}
	defer cancel()

	var values []string
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(extractScript(selector, attribute), &values)); err != nil {
		return errorResult(fmt.Sprintf("Extract failed: %v", err)), nil
	}

	data := map[string]any{
		"attribute": attribute,
		"selector":  selector,
		"values":    values,
	}
	if purpose := stringParam(action.Params, "purpose"); purpose != "" {
		data["purpose"] = purpose
	}

	return successResult(fmt.Sprintf("Extracted %d value(s)", len(values)), data), nil
}

// tabContext returns a chromedp context for the tab, creating it on first
// use, wrapped in the per-action timeout. The returned cancel releases only
// the timeout; the tab context itself is kept for reuse.
func (b *Browser) tabContext(ctx context.Context, tabID string) (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	t, ok := b.tabs[tabID]
	if !ok || t.ctx.Err() != nil {
		tabCtx, tabCancel := chromedp.NewContext(b.allocCtx)
		t = &tab{ctx: tabCtx, cancel: tabCancel}
		b.tabs[tabID] = t
	}
	b.mu.Unlock()

	// A probe run materializes the target; failure here means no tab is
	// reachable, which is fatal for the task.
	probeCtx, probeCancel := context.WithTimeout(t.ctx, actionTimeout)
	if err := chromedp.Run(probeCtx); err != nil {
		probeCancel()
		b.mu.Lock()
		t.cancel()
		delete(b.tabs, tabID)
		b.mu.Unlock()
		return nil, nil, fmt.Errorf("No browser tab available: %v", err)
	}
	probeCancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(t.ctx, actionTimeout)

	// Tie the action to the orchestration context as well.
	go func() {
		select {
		case <-ctx.Done():
			timeoutCancel()
		case <-timeoutCtx.Done():
		}
	}()

	return timeoutCtx, timeoutCancel, nil
}

// mouseClick clicks the first node matching selector with the given mouse
// button.
func mouseClick(selector, button string) chromedp.Action {
	return chromedp.QueryAfter(selector, func(ctx context.Context, _ cdpruntime.ExecutionContextID, nodes ...*cdp.Node) error {
		if len(nodes) == 0 {
			return fmt.Errorf("no element matches %q", selector)
		}
		return chromedp.MouseClickNode(nodes[0], chromedp.Button(button)).Do(ctx)
	}, chromedp.ByQuery)
}

// scrollScript builds the JS for a scroll action and returns the resulting
// window.scrollY. Amounts in (0, 1] are viewport fractions, larger values
// are pixels.
func scrollScript(direction string, amount float64) (string, error) {
	if amount <= 0 {
		amount = defaultScrollFraction
	}
	delta := fmt.Sprintf("%f", amount)
	if amount <= 1 {
		delta = fmt.Sprintf("window.innerHeight * %f", amount)
	}

	switch direction {
	case "down":
		return fmt.Sprintf("window.scrollBy(0, %s); window.scrollY", delta), nil
	case "up":
		return fmt.Sprintf("window.scrollBy(0, -(%s)); window.scrollY", delta), nil
	case "top":
		return "window.scrollTo(0, 0); window.scrollY", nil
	case "bottom":
		return "window.scrollTo(0, document.body.scrollHeight); window.scrollY", nil
	default:
		return "", fmt.Errorf("Unknown scroll direction %q.", direction)
	}
}

// extractScript builds the JS that collects up to extractCap non-empty
// attribute values from matching elements.
func extractScript(selector, attribute string) string {
	return fmt.Sprintf(`(() => {
		const out = [];
		for (const el of document.querySelectorAll(%q)) {
			let v;
			if (%q === "textContent" || %q === "innerHTML") {
				v = el[%q];
			} else {
				v = el.getAttribute(%q);
			}
			if (v && v.trim() !== "") {
				out.push(v.trim());
				if (out.length >= %d) break;
			}
		}
		return out;
	})()`, selector, attribute, attribute, attribute, attribute, extractCap)
}

func successResult(message string, data map[string]any) *Result {
	return &Result{
		Observation: models.Observation{
			Result:  models.ObservationSuccess,
			Message: message,
			Data:    data,
		},
	}
}

func errorResult(message string) *Result {
	return &Result{
		Observation: models.Observation{
			Result:  models.ObservationError,
			Message: message,
		},
	}
}

func terminalErrorResult(message string) *Result {
	r := errorResult(message)
	r.DidTerminate = true
	return r
}

func stringParam(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func boolParam(params map[string]any, key string) bool {
	v, _ := params[key].(bool)
	return v
}

// numberParam reads a numeric parameter; JSON decoding yields float64 but
// tests and in-process callers may pass ints.
func numberParam(params map[string]any, key string, fallback float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// durationParam reads a millisecond parameter as a duration.
func durationParam(params map[string]any, key string, fallback time.Duration) time.Duration {
	if _, ok := params[key]; !ok {
		return fallback
	}
	ms := numberParam(params, key, float64(fallback.Milliseconds()))
	return time.Duration(ms) * time.Millisecond
}

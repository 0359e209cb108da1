// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deliver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// ErrReportExtraction reports a delivery response the report body could not
// be recovered from.
var ErrReportExtraction = errors.New("report not found in delivery response")

// MinReportLength is the shortest stripped delivery response still treated
// as a plausible report body. Anything shorter surfaces an extraction error
// rather than corrupted text.
const MinReportLength = 50

// extractionErrorMessage is shown when the delivery response cannot be
// parsed back into a report.
const extractionErrorMessage = "Error: Report not found in the delivery response. The report was sent but could not be displayed."

// missingAddressMessage is shown when delivery is requested without an address.
const missingAddressMessage = "Error: Email address is required when sending the report via email."

// Gate decides whether a finished report is handed to the delivery agent
// and recovers the displayable report text from whatever came back. The
// agent is invoked at most once per gate.
type Gate struct {
	Agent Deliverer

	delivered atomic.Bool
}

// Finalize produces the final displayed text for a finished report. When
// send is false the report body is returned as-is (modulo code-fence
// stripping). When send is true the report is delivered exactly once and
// the agent's confirmation framing is stripped from the returned text.
// Every failure yields a human-readable error string as the text plus the
// underlying error, so callers can branch without parsing the message.
func (g *Gate) Finalize(ctx context.Context, report types.ReportDraft, send bool, address string) (string, error) {
	if !send {
		return stripFences(report.MarkdownReport), nil
	}

	if strings.TrimSpace(address) == "" {
		return missingAddressMessage, ErrMissingAddress
	}

	if !g.delivered.CompareAndSwap(false, true) {
		// A second delivery attempt is a caller bug; fall back to the plain
		// report rather than emailing twice.
		return stripFences(report.MarkdownReport), nil
	}

	out, err := g.Agent.Deliver(ctx, report, address)
	if err != nil {
		return "Error: delivery failed: " + err.Error(), fmt.Errorf("delivering report: %w", err)
	}

	body := stripFences(stripConfirmation(out))
	if len(body) < MinReportLength {
		return extractionErrorMessage, ErrReportExtraction
	}
	return body, nil
}

// stripConfirmation removes the delivery agent's confirmation preamble: the
// fixed marker plus the line naming the recipient address. Text without the
// marker passes through trimmed.
func stripConfirmation(text string) string {
	marker := strings.Index(text, ConfirmationMarker)
	if marker < 0 {
		return strings.TrimSpace(text)
	}

	rest := strings.TrimSpace(text[marker+len(ConfirmationMarker):])
	lines := strings.Split(rest, "\n")
	if len(lines) > 0 && (strings.Contains(strings.ToLower(lines[0]), "to") || strings.Contains(lines[0], "@")) {
		rest = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return rest
}

// stripFences removes a leading and trailing code-fence line when the text
// arrives wrapped in one.
func stripFences(text string) string {
	out := strings.TrimSpace(text)
	if strings.HasPrefix(out, "```") {
		if i := strings.Index(out, "\n"); i >= 0 {
			out = out[i+1:]
		} else {
			out = ""
		}
	}
	if strings.HasSuffix(out, "```") {
		out = strings.TrimSpace(strings.TrimSuffix(out, "```"))
	}
	return strings.TrimSpace(out)
}

package classify

import (
	"fmt"
	"strings"

	"cabwatch/fleet"
)

// Keyword families for upstream status vocabulary. The platform's vocabulary
// is inconsistent and still growing, so the classifier matches category
// membership rather than exact strings, and always has a safe default.
var (
	// Negated availability is checked before the available family so that
	// "AvailableNotInQueue" matches available but "NotAvailable" does not.
	notAvailableKeywords = []string{"notavailable", "not available", "unavailable"}
	availableKeywords    = []string{"available", "free", "clear"}
	enRouteKeywords      = []string{"goingtopickup", "going to pickup", "enroute", "en route"}
	busyKeywords         = []string{"busy", "meteron", "meter on", "pickingup", "picking up", "dispatched", "onjob", "pob"}
	breakKeywords        = []string{"break", "lunch", "endofshift", "end of shift"}
)

// Classify maps one vehicle snapshot to its operational state. Pure: no side
// effects, no I/O, no cache access. First matching family wins; missing
// status data maps to Offline, anything unrecognized to Unknown with the raw
// literal preserved in Reasons so the vocabulary can be expanded later.
func Classify(snap fleet.VehicleSnapshot) ClassifiedVehicle {
	cv := ClassifiedVehicle{
		Callsign:   snap.Callsign,
		Zone:       snap.Zone,
		Confidence: ConfidenceHigh,
	}

	status := normalize(snap.RawStatus)
	if status == "" || snap.NoData {
		cv.State = StateOffline
		cv.Confidence = ConfidenceLow
		cv.Reasons = append(cv.Reasons, "status:missing")
		cv.Color = colorFor(cv.State)
		return cv
	}

	switch {
	case matchesAny(status, notAvailableKeywords):
		cv.State = StateBreak
		cv.Reasons = append(cv.Reasons, "status:break-family:not-available")
	case matchesAny(status, availableKeywords):
		cv.State = StateAvailable
		cv.Reasons = append(cv.Reasons, "status:available-family")
	case matchesAny(status, enRouteKeywords):
		// Distinguished sub-case of the busy family.
		cv.State = StateEnRoute
		cv.Reasons = append(cv.Reasons, "status:busy-family:going-to-pickup")
	case matchesAny(status, busyKeywords):
		cv.State = StateBusy
		cv.Reasons = append(cv.Reasons, "status:busy-family")
	case matchesAny(status, breakKeywords):
		cv.State = StateBreak
		cv.Reasons = append(cv.Reasons, "status:break-family")
	default:
		cv.State = StateUnknown
		cv.Confidence = ConfidenceLow
		cv.Reasons = append(cv.Reasons, fmt.Sprintf("status:unrecognized:%q", snap.RawStatus))
	}

	cv.Color = colorFor(cv.State)
	return cv
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchesAny(status string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(status, kw) {
			return true
		}
	}
	return false
}

package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Component custom IDs are colon-delimited action tokens. They are decoded
// once, here, into a tagged variant; handlers never touch the raw string.

var ErrUnknownComponent = errors.New("unknown component id")

type ComponentAction int

const (
	ActionPollVote ComponentAction = iota
	ActionCreateTicket
	ActionTicketModal
	ActionStatusRefresh
)

const (
	pollVotePrefix       = "poll_vote"
	createTicketPrefix   = "create_ticket"
	ticketModalPrefix    = "ticket_modal"
	statusRefreshID      = "status_refresh"
	noTicketCategory     = "none"
	componentIDSeparator = ":"
)

// ComponentID is the decoded form of a button or modal custom ID. Only the
// fields for the decoded Action are meaningful.
type ComponentID struct {
	Action        ComponentAction
	PollID        string
	OptionIndex   int
	SupportRoleID string
	CategoryID    string
}

// ParseComponentID validates and decodes a raw custom ID.
func ParseComponentID(raw string) (ComponentID, error) {
	if raw == statusRefreshID {
		return ComponentID{Action: ActionStatusRefresh}, nil
	}

	parts := strings.Split(raw, componentIDSeparator)
	switch parts[0] {
	case pollVotePrefix:
		if len(parts) != 3 {
			return ComponentID{}, fmt.Errorf("%w: %q", ErrUnknownComponent, raw)
		}
		optionIndex, err := strconv.Atoi(parts[2])
		if err != nil {
			return ComponentID{}, fmt.Errorf("%w: bad option index in %q", ErrUnknownComponent, raw)
		}
		return ComponentID{
			Action:      ActionPollVote,
			PollID:      parts[1],
			OptionIndex: optionIndex,
		}, nil
	case createTicketPrefix, ticketModalPrefix:
		if len(parts) != 3 {
			return ComponentID{}, fmt.Errorf("%w: %q", ErrUnknownComponent, raw)
		}
		action := ActionCreateTicket
		if parts[0] == ticketModalPrefix {
			action = ActionTicketModal
		}
		return ComponentID{
			Action:        action,
			SupportRoleID: parts[1],
			CategoryID:    parts[2],
		}, nil
	}
	return ComponentID{}, fmt.Errorf("%w: %q", ErrUnknownComponent, raw)
}

func pollVoteID(pollID string, optionIndex int) string {
	return strings.Join([]string{pollVotePrefix, pollID, strconv.Itoa(optionIndex)}, componentIDSeparator)
}

func createTicketID(supportRoleID, categoryID string) string {
	if categoryID == "" {
		categoryID = noTicketCategory
	}
	return strings.Join([]string{createTicketPrefix, supportRoleID, categoryID}, componentIDSeparator)
}

func ticketModalID(supportRoleID, categoryID string) string {
	if categoryID == "" {
		categoryID = noTicketCategory
	}
	return strings.Join([]string{ticketModalPrefix, supportRoleID, categoryID}, componentIDSeparator)
}

package lookup

import (
	"fmt"
	"strconv"
	"strings"
)

// ACLAction defines whether to permit or deny
type ACLAction int

const (
	ACLPermit ACLAction = iota
	ACLDeny
)

// String returns the string representation of the ACL action
func (a ACLAction) String() string {
	switch a {
	case ACLPermit:
		return "PERMIT"
	case ACLDeny:
		return "DENY"
	default:
		return "UNKNOWN"
	}
}

// idRange is an inclusive id range; ALL is 0 to 0xFFFFFF.
type idRange struct {
	start uint32
	end   uint32
}

// ACL is a PERMIT or DENY list of radio or talkgroup ids
type ACL struct {
	Action ACLAction
	ranges []idRange
}

// PermitAll returns an ACL that allows every id.
func PermitAll() *ACL {
	return &ACL{Action: ACLPermit, ranges: []idRange{{0, maxID}}}
}

// String returns the string representation of the ACL
func (a *ACL) String() string {
	rules := make([]string, 0, len(a.ranges))
	for _, r := range a.ranges {
		switch {
		case r.start == 0 && r.end == maxID:
			rules = append(rules, "ALL")
		case r.start == r.end:
			rules = append(rules, strconv.FormatUint(uint64(r.start), 10))
		default:
			rules = append(rules, fmt.Sprintf("%d-%d", r.start, r.end))
		}
	}
	return fmt.Sprintf("%s:%s", a.Action, strings.Join(rules, ","))
}

// Check reports whether id is allowed
func (a *ACL) Check(id uint32) bool {
	matches := false
	for _, r := range a.ranges {
		if id >= r.start && id <= r.end {
			matches = true
			break
		}
	}

	if a.Action == ACLPermit {
		return matches
	}
	return !matches
}

// ParseACL parses an ACL string in the format "ACTION:RULE[,RULE]..."
// Examples: "PERMIT:ALL", "DENY:1", "PERMIT:3100-3199", "DENY:1,1000-2000,4500"
func ParseACL(rule string) (*ACL, error) {
	if rule == "" {
		return nil, fmt.Errorf("empty ACL rule")
	}

	action, list, ok := strings.Cut(rule, ":")
	if !ok {
		return nil, fmt.Errorf("invalid ACL format: missing colon")
	}

	acl := &ACL{}
	switch strings.ToUpper(action) {
	case "PERMIT":
		acl.Action = ACLPermit
	case "DENY":
		acl.Action = ACLDeny
	default:
		return nil, fmt.Errorf("invalid ACL action: %s", action)
	}

	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if strings.EqualFold(item, "ALL") {
			acl.ranges = append(acl.ranges, idRange{0, maxID})
			continue
		}

		lo, hi, isRange := strings.Cut(item, "-")
		start, err := parseID(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid ID: %s", item)
		}
		end := start
		if isRange {
			if end, err = parseID(hi); err != nil {
				return nil, fmt.Errorf("invalid range end: %s", hi)
			}
			if start > end {
				return nil, fmt.Errorf("invalid range: start (%d) > end (%d)", start, end)
			}
		}
		acl.ranges = append(acl.ranges, idRange{start, end})
	}

	if len(acl.ranges) == 0 {
		return nil, fmt.Errorf("no rules specified")
	}
	return acl, nil
}

func parseID(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	if v > maxID {
		return 0, fmt.Errorf("id %d exceeds 24 bits", v)
	}
	return uint32(v), nil
}

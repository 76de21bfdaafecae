package lisp

import (
	"fmt"
	"net/netip"
	"strings"
)

// DefaultRecordTTL is the record TTL, in minutes, used when a caller does not provide one.
const DefaultRecordTTL uint32 = 1440

// Locator is an RLOC through which an EID prefix is reachable.
type Locator struct {
	Address  netip.Addr `json:"address"`
	Priority uint8      `json:"priority"`
	Weight   uint8      `json:"weight"`
}

// AFI returns the address family of the locator address.
func (l Locator) AFI() AFI {
	return AFIOf(l.Address)
}

// ConflictsWith reports whether l and o belong to the same address family.
// A record keeps at most one locator per family.
func (l Locator) ConflictsWith(o Locator) bool {
	return l.AFI() == o.AFI()
}

func (l Locator) String() string {
	return fmt.Sprintf("%s(p=%d,w=%d)", l.Address, l.Priority, l.Weight)
}

// EIDRecord is a local EID-to-RLOC mapping advertised by an ETR.
type EIDRecord struct {
	EID        netip.Addr `json:"eid"`
	MaskLength uint8      `json:"mask-length"`
	TTL        uint32     `json:"ttl"`
	Locators   []Locator  `json:"locators"`
}

// Validate checks the record invariants: a valid EID and mask length,
// at least one locator, and at most one locator per address family.
func (r *EIDRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if !r.EID.IsValid() {
		return fmt.Errorf("%w: missing eid prefix", ErrInvalidAddress)
	}
	if int(r.MaskLength) > r.EID.BitLen() {
		return fmt.Errorf("%w: mask length %d exceeds %d bits of %s", ErrInvalidRecord, r.MaskLength, r.EID.BitLen(), r.EID)
	}
	if len(r.Locators) == 0 {
		return fmt.Errorf("%w: %s has no locator", ErrInvalidRecord, r.Prefix())
	}
	seen := make(map[AFI]struct{}, len(r.Locators))
	for _, l := range r.Locators {
		if !l.Address.IsValid() {
			return fmt.Errorf("%w: missing locator address in %s", ErrInvalidAddress, r.Prefix())
		}
		if _, ok := seen[l.AFI()]; ok {
			return fmt.Errorf("%w: %s has more than one %s locator", ErrInvalidRecord, r.Prefix(), l.AFI())
		}
		seen[l.AFI()] = struct{}{}
	}
	return nil
}

// Prefix returns the EID prefix in address/mask notation.
func (r *EIDRecord) Prefix() string {
	return fmt.Sprintf("%s/%d", r.EID, r.MaskLength)
}

// SamePrefix reports whether both records carry the same EID prefix value.
// The mask length is not part of the comparison, the newer record's mask wins on merge.
func (r *EIDRecord) SamePrefix(o *EIDRecord) bool {
	return r.EID == o.EID
}

// Equal compares the full identity of two records. Locator order is ignored.
func (r *EIDRecord) Equal(o *EIDRecord) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.EID != o.EID || r.MaskLength != o.MaskLength || r.TTL != o.TTL {
		return false
	}
	if len(r.Locators) != len(o.Locators) {
		return false
	}
	for _, l := range r.Locators {
		found := false
		for _, ol := range o.Locators {
			if l == ol {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of r.
func (r *EIDRecord) Clone() *EIDRecord {
	c := *r
	c.Locators = make([]Locator, len(r.Locators))
	copy(c.Locators, r.Locators)
	return &c
}

// Merge returns the record resulting from applying newer on top of r.
// Mask length and TTL are taken from newer. The locators of newer come first,
// followed by the locators of r whose address family newer does not carry.
func (r *EIDRecord) Merge(newer *EIDRecord) *EIDRecord {
	merged := &EIDRecord{
		EID:        newer.EID,
		MaskLength: newer.MaskLength,
		TTL:        newer.TTL,
		Locators:   make([]Locator, 0, len(newer.Locators)+len(r.Locators)),
	}
	merged.Locators = append(merged.Locators, newer.Locators...)
OLD:
	for _, ol := range r.Locators {
		for _, nl := range newer.Locators {
			if nl.ConflictsWith(ol) {
				continue OLD
			}
		}
		merged.Locators = append(merged.Locators, ol)
	}
	return merged
}

func (r *EIDRecord) String() string {
	locs := make([]string, 0, len(r.Locators))
	for _, l := range r.Locators {
		locs = append(locs, l.String())
	}
	return fmt.Sprintf("%s ttl=%d rlocs=[%s]", r.Prefix(), r.TTL, strings.Join(locs, ","))
}

// NewLocator parses address and returns the corresponding Locator.
func NewLocator(address string, priority, weight uint8) (Locator, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return Locator{}, err
	}
	return Locator{Address: addr, Priority: priority, Weight: weight}, nil
}

// NewEIDRecord parses eid and returns a validated record.
// A zero ttl is replaced by DefaultRecordTTL.
func NewEIDRecord(eid string, maskLength uint8, ttl uint32, locators ...Locator) (*EIDRecord, error) {
	addr, err := ParseAddress(eid)
	if err != nil {
		return nil, err
	}
	if ttl == 0 {
		ttl = DefaultRecordTTL
	}
	r := &EIDRecord{
		EID:        addr,
		MaskLength: maskLength,
		TTL:        ttl,
		Locators:   locators,
	}
	if err = r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Copyright 2024 Nokia
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datastore

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	"github.com/kylelemons/godebug/diff"
	"go.uber.org/mock/gomock"

	"github.com/iptecharch/lisp-config/mocks/mockdatastore"
	"github.com/iptecharch/lisp-config/pkg/lisp"
	"github.com/iptecharch/lisp-config/pkg/lispsimple"
)

const testDevice = lisp.DeviceID("netconf:10.0.0.5:830")

var addrComparer = cmp.Comparer(func(a, b netip.Addr) bool { return a == b })

type push struct {
	id        lisp.DeviceID
	datastore string
	xml       string
}

// recorder acknowledges every push and keeps the pushed documents.
type recorder struct {
	m      sync.Mutex
	pushes []push
}

func (r *recorder) Push(_ context.Context, id lisp.DeviceID, datastore string, doc *etree.Document) (bool, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.pushes = append(r.pushes, push{id: id, datastore: datastore, xml: lispsimple.DocString(doc, false)})
	return true, nil
}

func (r *recorder) count() int {
	r.m.Lock()
	defer r.m.Unlock()
	return len(r.pushes)
}

func (r *recorder) last(t *testing.T) push {
	t.Helper()
	r.m.Lock()
	defer r.m.Unlock()
	if len(r.pushes) == 0 {
		t.Fatalf("nothing was pushed")
	}
	return r.pushes[len(r.pushes)-1]
}

func record(t *testing.T, eid string, mask uint8, ttl uint32, locs ...string) *lisp.EIDRecord {
	t.Helper()
	ls := make([]lisp.Locator, 0, len(locs))
	for _, l := range locs {
		lc, err := lisp.NewLocator(l, 1, 100)
		if err != nil {
			t.Fatal(err)
		}
		ls = append(ls, lc)
	}
	r, err := lisp.NewEIDRecord(eid, mask, ttl, ls...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func itrXML(addrs ...string) string {
	s := `<itr-cfg xmlns="urn:ietf:params:xml:ns:yang:lispsimple">`
	if len(addrs) == 0 {
		return s + `<map-resolvers/></itr-cfg>`
	}
	s += `<map-resolvers>`
	for _, a := range addrs {
		afi := "ipv4"
		if netip.MustParseAddr(a).Is6() {
			afi = "ipv6"
		}
		s += fmt.Sprintf(`<map-resolver-address><%s>%s</%s></map-resolver-address>`, afi, a, afi)
	}
	return s + `</map-resolvers></itr-cfg>`
}

func TestStore_AddResolver(t *testing.T) {
	p := &recorder{}
	s := New(p, "")
	ctx := context.Background()

	r, err := s.AddResolver(ctx, testDevice, "running", "9.9.9.9")
	if err != nil {
		t.Fatalf("AddResolver() unexpected error: %v", err)
	}
	if r != (Result{Changed: true, Pushed: true}) {
		t.Errorf("AddResolver() = %+v", r)
	}
	got := p.last(t)
	if got.id != testDevice || got.datastore != "running" {
		t.Errorf("pushed to %s %s", got.id, got.datastore)
	}
	if d := diff.Diff(itrXML("9.9.9.9"), got.xml); d != "" {
		t.Errorf("pushed document mismatch:\n%s", d)
	}

	// idempotent
	r, err = s.AddResolver(ctx, testDevice, "running", "9.9.9.9")
	if err != nil || r != (Result{}) {
		t.Errorf("second AddResolver() = %+v, %v", r, err)
	}
	if p.count() != 1 {
		t.Errorf("expected a single push, got %d", p.count())
	}

	// insertion order is rendering order
	if _, err = s.AddResolver(ctx, testDevice, "candidate", "2001:db8::53"); err != nil {
		t.Fatal(err)
	}
	if _, err = s.AddResolver(ctx, testDevice, "", "1.1.1.1"); err != nil {
		t.Fatal(err)
	}
	got = p.last(t)
	if got.datastore != "running" {
		t.Errorf("empty datastore should use the default target, got %q", got.datastore)
	}
	if d := diff.Diff(itrXML("9.9.9.9", "2001:db8::53", "1.1.1.1"), got.xml); d != "" {
		t.Errorf("pushed document mismatch:\n%s", d)
	}
	if d := cmp.Diff([]string{"9.9.9.9", "2001:db8::53", "1.1.1.1"}, s.Resolvers(testDevice)); d != "" {
		t.Errorf("Resolvers() mismatch (-want +got):\n%s", d)
	}
}

func TestStore_ResolverValidation(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	// no push may happen
	s := New(mockdatastore.NewMockPusher(mockCtrl), "running")
	ctx := context.Background()

	tests := []struct {
		name      string
		datastore string
		address   string
		kind      error
	}{
		{name: "empty address", datastore: "running", address: "", kind: lisp.ErrInvalidAddress},
		{name: "hostname", datastore: "running", address: "mr.example.net", kind: lisp.ErrInvalidAddress},
		{name: "truncated", datastore: "running", address: "10.0.0", kind: lisp.ErrInvalidAddress},
		{name: "unknown datastore", datastore: "intended", address: "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddResolver(ctx, testDevice, tt.datastore, tt.address)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("AddResolver() error = %v, want ErrValidation", err)
			}
			if tt.kind != nil && !errors.Is(err, tt.kind) {
				t.Errorf("AddResolver() error = %v, want %v", err, tt.kind)
			}
			_, err = s.RemoveResolver(ctx, testDevice, tt.datastore, tt.address)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("RemoveResolver() error = %v, want ErrValidation", err)
			}
			if tt.kind != nil && !errors.Is(err, tt.kind) {
				t.Errorf("RemoveResolver() error = %v, want %v", err, tt.kind)
			}
		})
	}
	if n := len(s.Resolvers(testDevice)); n != 0 {
		t.Errorf("state was mutated: %v", s.Resolvers(testDevice))
	}
}

func TestStore_RemoveResolver(t *testing.T) {
	p := &recorder{}
	s := New(p, "running")
	ctx := context.Background()

	// nothing to remove, no push
	r, err := s.RemoveResolver(ctx, testDevice, "running", "9.9.9.9")
	if err != nil || r != (Result{}) {
		t.Fatalf("RemoveResolver() = %+v, %v", r, err)
	}
	if p.count() != 0 {
		t.Fatalf("unexpected push")
	}

	for _, a := range []string{"9.9.9.9", "8.8.8.8"} {
		if _, err = s.AddResolver(ctx, testDevice, "running", a); err != nil {
			t.Fatal(err)
		}
	}
	r, err = s.RemoveResolver(ctx, testDevice, "running", "9.9.9.9")
	if err != nil || r != (Result{Changed: true, Pushed: true}) {
		t.Fatalf("RemoveResolver() = %+v, %v", r, err)
	}
	if d := diff.Diff(itrXML("8.8.8.8"), p.last(t).xml); d != "" {
		t.Errorf("pushed document mismatch:\n%s", d)
	}
	if _, err = s.RemoveResolver(ctx, testDevice, "running", "8.8.8.8"); err != nil {
		t.Fatal(err)
	}
	if d := diff.Diff(itrXML(), p.last(t).xml); d != "" {
		t.Errorf("pushed document mismatch:\n%s", d)
	}
	r, err = s.RemoveResolver(ctx, testDevice, "running", "8.8.8.8")
	if err != nil || r != (Result{}) {
		t.Errorf("RemoveResolver() of a removed address = %+v, %v", r, err)
	}
	if p.count() != 4 {
		t.Errorf("expected 4 pushes, got %d", p.count())
	}
}

func TestStore_UpsertEidRecord(t *testing.T) {
	tests := []struct {
		name    string
		upserts []*lisp.EIDRecord
		want    []*lisp.EIDRecord
	}{
		{
			name:    "insert",
			upserts: []*lisp.EIDRecord{record(t, "10.0.0.0", 24, 10, "1.1.1.1")},
			want:    []*lisp.EIDRecord{record(t, "10.0.0.0", 24, 10, "1.1.1.1")},
		},
		{
			name: "same family replaces",
			upserts: []*lisp.EIDRecord{
				record(t, "10.0.0.0", 24, 10, "1.1.1.1"),
				record(t, "10.0.0.0", 24, 10, "2.2.2.2"),
			},
			want: []*lisp.EIDRecord{record(t, "10.0.0.0", 24, 10, "2.2.2.2")},
		},
		{
			name: "other family is kept",
			upserts: []*lisp.EIDRecord{
				record(t, "10.0.0.0", 24, 10, "1.1.1.1"),
				record(t, "10.0.0.0", 24, 10, "2001:db8::1"),
			},
			want: []*lisp.EIDRecord{record(t, "10.0.0.0", 24, 10, "2001:db8::1", "1.1.1.1")},
		},
		{
			name: "mask and ttl replaced",
			upserts: []*lisp.EIDRecord{
				record(t, "10.0.0.0", 24, 10, "1.1.1.1"),
				record(t, "10.0.0.0", 16, 60, "1.1.1.1"),
			},
			want: []*lisp.EIDRecord{record(t, "10.0.0.0", 16, 60, "1.1.1.1")},
		},
		{
			name: "merged record moves to the end",
			upserts: []*lisp.EIDRecord{
				record(t, "10.0.0.0", 24, 10, "1.1.1.1"),
				record(t, "10.1.0.0", 16, 10, "3.3.3.3"),
				record(t, "10.0.0.0", 24, 10, "2.2.2.2"),
			},
			want: []*lisp.EIDRecord{
				record(t, "10.1.0.0", 16, 10, "3.3.3.3"),
				record(t, "10.0.0.0", 24, 10, "2.2.2.2"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recorder{}
			s := New(p, "candidate")
			for _, u := range tt.upserts {
				r, err := s.UpsertEidRecord(context.Background(), testDevice, u)
				if err != nil {
					t.Fatalf("UpsertEidRecord() unexpected error: %v", err)
				}
				if r != (Result{Changed: true, Pushed: true}) {
					t.Errorf("UpsertEidRecord() = %+v", r)
				}
			}
			got := s.EIDRecords(testDevice)
			if d := cmp.Diff(tt.want, got, addrComparer); d != "" {
				t.Errorf("EIDRecords() mismatch (-want +got):\n%s", d)
			}

			// every push carries the whole database
			doc, err := lispsimple.ETRConfig(tt.want)
			if err != nil {
				t.Fatal(err)
			}
			last := p.last(t)
			if last.datastore != "candidate" {
				t.Errorf("pushed to %q, want the default target", last.datastore)
			}
			if d := diff.Diff(lispsimple.DocString(doc, false), last.xml); d != "" {
				t.Errorf("pushed document mismatch:\n%s", d)
			}
			if p.count() != len(tt.upserts) {
				t.Errorf("expected %d pushes, got %d", len(tt.upserts), p.count())
			}
		})
	}
}

func TestStore_UpsertEidRecordValidation(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	s := New(mockdatastore.NewMockPusher(mockCtrl), "running")

	ipv6EID := record(t, "2001:db8::", 48, 10, "1.1.1.1")
	twoV4 := &lisp.EIDRecord{
		EID:        netip.MustParseAddr("10.0.0.0"),
		MaskLength: 24,
		TTL:        10,
		Locators: []lisp.Locator{
			{Address: netip.MustParseAddr("1.1.1.1")},
			{Address: netip.MustParseAddr("2.2.2.2")},
		},
	}
	noLocators := &lisp.EIDRecord{EID: netip.MustParseAddr("10.0.0.0"), MaskLength: 24, TTL: 10}

	outOfRange := &lisp.EIDRecord{
		EID:        netip.MustParseAddr("10.0.0.0"),
		MaskLength: 33,
		TTL:        10,
		Locators:   []lisp.Locator{{Address: netip.MustParseAddr("1.1.1.1")}},
	}

	tests := []struct {
		name   string
		record *lisp.EIDRecord
		kind   error
	}{
		{name: "nil", record: nil},
		{name: "ipv6 eid", record: ipv6EID, kind: lispsimple.ErrUnsupportedAFI},
		{name: "two ipv4 locators", record: twoV4, kind: lisp.ErrInvalidRecord},
		{name: "no locators", record: noLocators, kind: lisp.ErrInvalidRecord},
		{name: "mask out of range", record: outOfRange, kind: lisp.ErrInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpsertEidRecord(context.Background(), testDevice, tt.record)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("UpsertEidRecord() error = %v, want ErrValidation", err)
			}
			if tt.kind != nil && !errors.Is(err, tt.kind) {
				t.Errorf("UpsertEidRecord() error = %v, want %v", err, tt.kind)
			}
		})
	}
	if n := len(s.EIDRecords(testDevice)); n != 0 {
		t.Errorf("state was mutated: %v", s.EIDRecords(testDevice))
	}
}

func TestStore_RemoveEidRecord(t *testing.T) {
	p := &recorder{}
	s := New(p, "running")
	ctx := context.Background()

	r1 := record(t, "10.0.0.0", 24, 10, "1.1.1.1", "2001:db8::1")
	r2 := record(t, "10.1.0.0", 16, 10, "3.3.3.3")
	for _, r := range []*lisp.EIDRecord{r1, r2} {
		if _, err := s.UpsertEidRecord(ctx, testDevice, r); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		remove *lisp.EIDRecord
		want   Result
		left   int
	}{
		{name: "different ttl", remove: record(t, "10.0.0.0", 24, 20, "1.1.1.1", "2001:db8::1"), want: Result{}, left: 2},
		{name: "missing locator", remove: record(t, "10.0.0.0", 24, 10, "1.1.1.1"), want: Result{}, left: 2},
		{name: "locator order does not matter", remove: record(t, "10.0.0.0", 24, 10, "2001:db8::1", "1.1.1.1"), want: Result{Changed: true, Pushed: true}, left: 1},
		{name: "already removed", remove: r1, want: Result{}, left: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := p.count()
			got, err := s.RemoveEidRecord(ctx, testDevice, tt.remove)
			if err != nil {
				t.Fatalf("RemoveEidRecord() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RemoveEidRecord() = %+v, want %+v", got, tt.want)
			}
			if n := len(s.EIDRecords(testDevice)); n != tt.left {
				t.Errorf("%d records left, want %d", n, tt.left)
			}
			if pushed := p.count() - before; pushed != btoi(tt.want.Changed) {
				t.Errorf("%d pushes for %+v", pushed, tt.want)
			}
		})
	}
	if d := cmp.Diff([]*lisp.EIDRecord{r2}, s.EIDRecords(testDevice), addrComparer); d != "" {
		t.Errorf("EIDRecords() mismatch (-want +got):\n%s", d)
	}

	// unknown device
	got, err := s.RemoveEidRecord(ctx, "netconf:10.0.0.6:830", r2)
	if err != nil || got != (Result{}) {
		t.Errorf("RemoveEidRecord() on an unknown device = %+v, %v", got, err)
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestStore_PushFailureKeepsIntendedState(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	pushErr := errors.New("transport error: EOF")
	p := mockdatastore.NewMockPusher(mockCtrl)
	gomock.InOrder(
		p.EXPECT().Push(gomock.Any(), testDevice, "running", gomock.Any()).Return(false, pushErr),
		p.EXPECT().Push(gomock.Any(), testDevice, "running", gomock.Any()).Return(false, nil),
		// resync re-renders both documents
		p.EXPECT().Push(gomock.Any(), testDevice, "running", gomock.Any()).Return(true, nil),
		p.EXPECT().Push(gomock.Any(), testDevice, "running", gomock.Any()).Return(true, nil),
	)
	s := New(p, "running")
	ctx := context.Background()

	r, err := s.AddResolver(ctx, testDevice, "running", "9.9.9.9")
	if !errors.Is(err, pushErr) {
		t.Fatalf("AddResolver() error = %v, want %v", err, pushErr)
	}
	if r != (Result{Changed: true}) {
		t.Errorf("AddResolver() = %+v", r)
	}
	if d := cmp.Diff([]string{"9.9.9.9"}, s.Resolvers(testDevice)); d != "" {
		t.Errorf("Resolvers() mismatch (-want +got):\n%s", d)
	}

	r, err = s.UpsertEidRecord(ctx, testDevice, record(t, "10.0.0.0", 24, 10, "1.1.1.1"))
	if err != nil || r != (Result{Changed: true}) {
		t.Errorf("UpsertEidRecord() = %+v, %v", r, err)
	}

	r, err = s.Resync(ctx, testDevice, "")
	if err != nil || r != (Result{Pushed: true}) {
		t.Errorf("Resync() = %+v, %v", r, err)
	}
}

func TestStore_Resync(t *testing.T) {
	p := &recorder{}
	s := New(p, "running")
	ctx := context.Background()

	// nothing known about the device
	r, err := s.Resync(ctx, testDevice, "running")
	if err != nil || r != (Result{}) || p.count() != 0 {
		t.Fatalf("Resync() = %+v, %v", r, err)
	}

	if _, err = s.AddResolver(ctx, testDevice, "candidate", "9.9.9.9"); err != nil {
		t.Fatal(err)
	}
	r, err = s.Resync(ctx, testDevice, "candidate")
	if err != nil || r != (Result{Pushed: true}) {
		t.Fatalf("Resync() = %+v, %v", r, err)
	}
	if p.count() != 3 {
		t.Fatalf("expected 3 pushes, got %d", p.count())
	}
	if d := cmp.Diff(push{id: testDevice, datastore: "candidate", xml: itrXML("9.9.9.9")}, p.pushes[1], cmp.AllowUnexported(push{})); d != "" {
		t.Errorf("resync itr push mismatch (-want +got):\n%s", d)
	}
	if got := p.pushes[2].xml; got != `<etr-cfg xmlns="urn:ietf:params:xml:ns:yang:lispsimple"><local-eids/></etr-cfg>` {
		t.Errorf("resync etr push = %s", got)
	}
	if _, err = s.Resync(ctx, testDevice, "intended"); !errors.Is(err, ErrValidation) {
		t.Errorf("Resync() error = %v, want ErrValidation", err)
	}
}

func TestStore_ResyncPartialFailure(t *testing.T) {
	errTransport := errors.New("transport error")
	isDoc := func(root string) gomock.Matcher {
		return gomock.Cond(func(x any) bool {
			doc, ok := x.(*etree.Document)
			return ok && doc.Root() != nil && doc.Root().Tag == root
		})
	}

	tests := []struct {
		name    string
		itrErr  error
		etrErr  error
		failed  string
		succeed string
	}{
		{name: "etr-cfg fails", etrErr: errTransport, failed: "etr-cfg", succeed: "itr-cfg"},
		{name: "itr-cfg fails", itrErr: errTransport, failed: "itr-cfg", succeed: "etr-cfg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			defer mockCtrl.Finish()
			p := mockdatastore.NewMockPusher(mockCtrl)
			s := New(p, "running")
			ctx := context.Background()

			p.EXPECT().Push(gomock.Any(), testDevice, "running", isDoc("itr-cfg")).Return(true, nil)
			if _, err := s.AddResolver(ctx, testDevice, "running", "9.9.9.9"); err != nil {
				t.Fatal(err)
			}

			// both documents are attempted whichever fails
			gomock.InOrder(
				p.EXPECT().Push(gomock.Any(), testDevice, "running", isDoc("itr-cfg")).Return(tt.itrErr == nil, tt.itrErr),
				p.EXPECT().Push(gomock.Any(), testDevice, "running", isDoc("etr-cfg")).Return(tt.etrErr == nil, tt.etrErr),
			)
			r, err := s.Resync(ctx, testDevice, "running")
			if !errors.Is(err, errTransport) {
				t.Fatalf("Resync() error = %v, want %v", err, errTransport)
			}
			if r != (Result{}) {
				t.Errorf("Resync() = %+v, want zero result", r)
			}
			if !strings.Contains(err.Error(), tt.failed+":") {
				t.Errorf("Resync() error %q does not name %s", err, tt.failed)
			}
			if strings.Contains(err.Error(), tt.succeed+":") {
				t.Errorf("Resync() error %q names %s which was acknowledged", err, tt.succeed)
			}
		})
	}
}

func TestStore_Release(t *testing.T) {
	s := New(&recorder{}, "running")
	ctx := context.Background()
	for _, id := range []lisp.DeviceID{"netconf:10.0.0.6:830", testDevice} {
		if _, err := s.AddResolver(ctx, id, "running", "9.9.9.9"); err != nil {
			t.Fatal(err)
		}
	}
	if d := cmp.Diff([]lisp.DeviceID{"netconf:10.0.0.5:830", "netconf:10.0.0.6:830"}, s.Devices()); d != "" {
		t.Errorf("Devices() mismatch (-want +got):\n%s", d)
	}
	s.Release(testDevice)
	if n := len(s.Resolvers(testDevice)); n != 0 {
		t.Errorf("released device still has %d resolvers", n)
	}
	if d := cmp.Diff([]lisp.DeviceID{"netconf:10.0.0.6:830"}, s.Devices()); d != "" {
		t.Errorf("Devices() mismatch (-want +got):\n%s", d)
	}
}

func TestStore_ConcurrentMutations(t *testing.T) {
	p := &recorder{}
	s := New(p, "running")
	ctx := context.Background()

	const n = 50
	wg := new(sync.WaitGroup)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := fmt.Sprintf("10.1.%d.%d", i/256, i%256)
			if _, err := s.AddResolver(ctx, testDevice, "running", addr); err != nil {
				t.Errorf("AddResolver(%s): %v", addr, err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(s.Resolvers(testDevice)); got != n {
		t.Fatalf("expected %d resolvers, got %d", n, got)
	}
	// the last push saw every resolver
	doc := etree.NewDocument()
	if err := doc.ReadFromString(p.last(t).xml); err != nil {
		t.Fatal(err)
	}
	if got := len(doc.FindElements("//map-resolver-address")); got != n {
		t.Errorf("last push carries %d resolvers, want %d", got, n)
	}
}

func TestStore_LockHonorsContext(t *testing.T) {
	release := make(chan struct{})
	blocked := &blockingPusher{release: release, entered: make(chan struct{})}
	s := New(blocked, "running")

	go func() {
		_, _ = s.AddResolver(context.Background(), testDevice, "running", "9.9.9.9")
	}()
	<-blocked.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.AddResolver(ctx, testDevice, "running", "8.8.8.8"); !errors.Is(err, context.Canceled) {
		t.Errorf("AddResolver() error = %v, want context.Canceled", err)
	}
	close(release)
}

func TestStore_DevicesAreIndependent(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	blocked := &blockingPusher{release: release, entered: make(chan struct{}), device: testDevice}
	s := New(blocked, "running")

	go func() {
		_, _ = s.AddResolver(context.Background(), testDevice, "running", "9.9.9.9")
	}()
	<-blocked.entered

	other := lisp.DeviceID("netconf:10.0.0.6:830")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r, err := s.AddResolver(ctx, other, "running", "8.8.8.8")
	if err != nil {
		t.Fatalf("AddResolver() on %s error = %v", other, err)
	}
	if r != (Result{Changed: true, Pushed: true}) {
		t.Errorf("AddResolver() on %s = %+v", other, r)
	}
	if d := cmp.Diff([]string{"8.8.8.8"}, s.Resolvers(other)); d != "" {
		t.Errorf("Resolvers() mismatch (-want +got):\n%s", d)
	}
}

// blockingPusher holds the pushes to device, or to every device when device
// is empty, until release is closed.
type blockingPusher struct {
	release chan struct{}
	entered chan struct{}
	device  lisp.DeviceID
	once    sync.Once
}

func (b *blockingPusher) Push(_ context.Context, id lisp.DeviceID, _ string, _ *etree.Document) (bool, error) {
	if b.device != "" && id != b.device {
		return true, nil
	}
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return true, nil
}

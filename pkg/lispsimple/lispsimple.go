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

// Package lispsimple renders LISP ITR and ETR configuration as XML documents
// of the lispsimple YANG model, as consumed by OOR over NETCONF.
package lispsimple

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/iptecharch/lisp-config/pkg/lisp"
)

const (
	// Namespace of the lispsimple YANG module.
	Namespace = "urn:ietf:params:xml:ns:yang:lispsimple"

	itrRoot = "itr-cfg"
	etrRoot = "etr-cfg"
)

// ErrUnsupportedAFI is returned when an address family has no rendering in the model.
var ErrUnsupportedAFI = errors.New("unsupported address family")

// ITRConfig builds the itr-cfg document listing the map-resolvers in the given order.
func ITRConfig(resolvers []string) (*etree.Document, error) {
	doc := etree.NewDocument()
	root := newRoot(doc, itrRoot)
	mrs := root.CreateElement("map-resolvers")
	for _, r := range resolvers {
		addr, err := lisp.ParseAddress(r)
		if err != nil {
			return nil, fmt.Errorf("map-resolver %q: %w", r, err)
		}
		mra := mrs.CreateElement("map-resolver-address")
		mra.CreateElement(lisp.AFIOf(addr).String()).SetText(addr.String())
	}
	return doc, nil
}

// ETRConfig builds the etr-cfg document holding one local-eid per record, in the given order.
func ETRConfig(records []*lisp.EIDRecord) (*etree.Document, error) {
	doc := etree.NewDocument()
	root := newRoot(doc, etrRoot)
	eids := root.CreateElement("local-eids")
	for _, r := range records {
		if err := addLocalEID(eids, r); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// CheckRecord reports whether r can be rendered in an etr-cfg document.
// Only IPv4 EID prefixes are supported, locators render as ipv4 or ipv6.
func CheckRecord(r *lisp.EIDRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if lisp.AFIOf(r.EID) != lisp.AFIIPv4 {
		return fmt.Errorf("%w: eid %s is %s, only ipv4 eid prefixes are supported", ErrUnsupportedAFI, r.Prefix(), lisp.AFIOf(r.EID))
	}
	return nil
}

func addLocalEID(parent *etree.Element, r *lisp.EIDRecord) error {
	if err := CheckRecord(r); err != nil {
		return err
	}
	le := parent.CreateElement("local-eid")
	addLispAddress(le.CreateElement("eid-address"), r.EID.String(), lisp.AFIIPv4)

	rlocs := le.CreateElement("rlocs")
	for _, l := range r.Locators {
		rloc := rlocs.CreateElement("rloc")
		addLispAddress(rloc.CreateElement("locator-address"), l.Address.String(), l.AFI())
		rloc.CreateElement("priority").SetText(strconv.Itoa(int(l.Priority)))
		rloc.CreateElement("weight").SetText(strconv.Itoa(int(l.Weight)))
	}
	le.CreateElement("record-ttl").SetText(strconv.FormatUint(uint64(r.TTL), 10))
	return nil
}

// addLispAddress fills a lisp-address grouping: the afi leaf followed by the address leaf.
func addLispAddress(elem *etree.Element, address string, afi lisp.AFI) {
	elem.CreateElement("afi").SetText(afi.String())
	elem.CreateElement(afi.String()).SetText(address)
}

func newRoot(doc *etree.Document, tag string) *etree.Element {
	root := doc.CreateElement(tag)
	root.CreateAttr("xmlns", Namespace)
	return root
}

// ITRFilter returns the get-config subtree filter selecting the itr-cfg container.
func ITRFilter() string {
	return filter(itrRoot)
}

// ETRFilter returns the get-config subtree filter selecting the etr-cfg container.
func ETRFilter() string {
	return filter(etrRoot)
}

func filter(tag string) string {
	doc := etree.NewDocument()
	newRoot(doc, tag)
	return DocString(doc, false)
}

// DocString serializes doc, indented with two spaces if requested.
func DocString(doc *etree.Document, indented bool) string {
	if doc == nil {
		return ""
	}
	doc = doc.Copy()
	if indented {
		doc.Indent(2)
	} else {
		doc.Unindent()
	}
	s, _ := doc.WriteToString()
	return s
}

package types

import (
	"errors"

	"github.com/beevik/etree"
)

// ErrRPCError is wrapped by drivers when the device answered with an rpc-error.
var ErrRPCError = errors.New("netconf rpc-error")

type NetconfResponse struct {
	Doc *etree.Document
}

func NewNetconfResponse(doc *etree.Document) *NetconfResponse {
	return &NetconfResponse{
		Doc: doc,
	}
}

// OK reports whether the reply carries an <ok/> element.
func (nr *NetconfResponse) OK() bool {
	if nr == nil || nr.Doc == nil {
		return false
	}
	return nr.Doc.FindElement("//ok") != nil
}

func (nr *NetconfResponse) DocAsString(indented bool) string {
	if nr == nil || nr.Doc == nil {
		return ""
	}
	doc := nr.Doc
	if !indented {
		doc = doc.Copy()
		doc.Unindent()
	} else {
		doc = doc.Copy()
		doc.Indent(2)
	}
	s, _ := doc.WriteToString()
	return s
}

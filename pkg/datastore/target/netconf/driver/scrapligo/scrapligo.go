package scrapligo

import (
	"fmt"

	"github.com/beevik/etree"
	scraplinetconf "github.com/scrapli/scrapligo/driver/netconf"
	"github.com/scrapli/scrapligo/driver/options"
	"github.com/scrapli/scrapligo/response"
	"github.com/scrapli/scrapligo/util"

	"github.com/iptecharch/lisp-config/pkg/config"
	"github.com/iptecharch/lisp-config/pkg/datastore/target/netconf"
	"github.com/iptecharch/lisp-config/pkg/datastore/target/netconf/types"
)

type ScrapligoNetconfTarget struct {
	driver *scraplinetconf.Driver
}

// NewScrapligoNetconfTarget inits a new ScrapligoNetconfTarget which is already connected to the target node
func NewScrapligoNetconfTarget(cfg *config.SBI) (*ScrapligoNetconfTarget, error) {
	opts := []util.Option{
		options.WithAuthNoStrictKey(),
		options.WithTransportType("standard"),
		options.WithPort(int(cfg.Port)),
		options.WithTimeoutOps(cfg.Timeout),
	}

	if cfg.Credentials != nil {
		opts = append(opts,
			options.WithAuthUsername(cfg.Credentials.Username),
			options.WithAuthPassword(cfg.Credentials.Password),
		)
	}
	if nco := cfg.NetconfOptions; nco != nil {
		if nco.ForceSelfClosingTags {
			opts = append(opts, options.WithNetconfForceSelfClosingTags())
		}
		if nco.PreferredNCVersion != "" {
			opts = append(opts,
				options.WithNetconfPreferredVersion(nco.PreferredNCVersion),
			)
		}
	}
	// init the netconf driver
	d, err := scraplinetconf.NewDriver(cfg.Address, opts...)
	if err != nil {
		return nil, err
	}

	err = d.Open()
	if err != nil {
		return nil, err
	}

	return &ScrapligoNetconfTarget{
		driver: d,
	}, nil
}

// Open satisfies the directory session factory signature.
func Open(cfg *config.SBI) (netconf.Driver, error) {
	return NewScrapligoNetconfTarget(cfg)
}

func (snt *ScrapligoNetconfTarget) Close() error {
	return snt.driver.Close()
}

func (snt *ScrapligoNetconfTarget) IsAlive() bool {
	return snt.driver.Transport != nil && snt.driver.Transport.IsAlive()
}

func (snt *ScrapligoNetconfTarget) GetConfig(source string, filter string) (*types.NetconfResponse, error) {
	// prepare the filter to hand it to scrapli
	filterDoc := createFilterOption(filter)

	// execute the GetConfig rpc
	resp, err := snt.driver.GetConfig(source, filterDoc)
	if err != nil {
		return nil, err
	}
	x, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}

	// the actual config is contained under /rpc-reply/data/ in the result document.
	// an empty datastore yields an empty data element and an empty document.
	newRootXpath := "/rpc-reply/data"
	r := x.FindElement(newRootXpath)
	if r == nil {
		return nil, fmt.Errorf("unable to find %q in %s", newRootXpath, resp.Result)
	}
	data := etree.NewDocument()
	for _, c := range r.ChildElements() {
		data.AddChild(c.Copy())
	}

	return types.NewNetconfResponse(data), nil
}

// CopyConfig replaces the target datastore with config.
// scrapligo only copies between named datastores, so the copy-config
// carrying an inline <config> source is sent as a bare RPC.
func (snt *ScrapligoNetconfTarget) CopyConfig(target string, config string) (*types.NetconfResponse, error) {
	payload, err := copyConfigPayload(target, config)
	if err != nil {
		return nil, err
	}
	resp, err := snt.driver.RPC(createFilterOption(payload))
	if err != nil {
		return nil, err
	}
	x, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}
	return types.NewNetconfResponse(x), nil
}

// copyConfigPayload builds the copy-config operation element for the rpc body.
func copyConfigPayload(target string, config string) (string, error) {
	cfgDoc := etree.NewDocument()
	if err := cfgDoc.ReadFromString(config); err != nil {
		return "", fmt.Errorf("invalid config document: %w", err)
	}
	doc := etree.NewDocument()
	cc := doc.CreateElement("copy-config")
	cc.CreateElement("target").CreateElement(target)
	cfg := cc.CreateElement("source").CreateElement("config")
	for _, c := range cfgDoc.ChildElements() {
		cfg.AddChild(c.Copy())
	}
	return doc.WriteToString()
}

// parseResponse turns a device reply into an etree document,
// rpc-errors reported by the device are wrapped with types.ErrRPCError.
func parseResponse(resp *response.NetconfResponse) (*etree.Document, error) {
	if resp.Failed != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrRPCError, resp.Failed)
	}

	// creating a new etree Document and parsing the netconf rpc result
	x := etree.NewDocument()
	err := x.ReadFromString(resp.Result)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// createFilterOption is a helper function that populates the Filter field for the internal Scrapligo RPC instantiation
func createFilterOption(filter string) util.Option {
	return func(x interface{}) error {
		oo, ok := x.(*scraplinetconf.OperationOptions)

		if !ok {
			return util.ErrIgnoredOption
		}
		oo.Filter = filter
		return nil
	}
}

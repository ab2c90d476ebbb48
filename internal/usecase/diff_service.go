package usecase

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

// DiffService compares canonical products against the shop's current listings
// and produces the change set for one run. Listings are indexed by the handle
// derived from each product identifier.
type DiffService struct {
	logger *zap.Logger
}

// NewDiffService creates a diff service.
func NewDiffService(logger *zap.Logger) *DiffService {
	return &DiffService{logger: logger}
}

// Diff tags every local product as Create, Update or Unchanged and every
// listing without a local counterpart as RemoteOnly. RemoteOnly entries are
// reported, never deleted here. Entries are ordered by handle so repeated
// runs over identical input dispatch in identical order.
func (s *DiffService) Diff(local []domain.Product, remote []domain.RemoteListing) *domain.ChangeSet {
	remoteByHandle := make(map[string]*domain.RemoteListing, len(remote))
	for i := range remote {
		if remote[i].Handle != "" {
			remoteByHandle[remote[i].Handle] = &remote[i]
		}
	}

	cs := &domain.ChangeSet{}
	matched := make(map[string]bool, len(local))

	for i := range local {
		p := &local[i]
		listing, ok := remoteByHandle[p.Handle()]
		if !ok {
			cs.Changes = append(cs.Changes, domain.Change{Action: domain.ActionCreate, Product: p})
			continue
		}
		matched[p.Handle()] = true

		deltas := compareFields(p, listing)
		if len(deltas) == 0 {
			cs.Changes = append(cs.Changes, domain.Change{Action: domain.ActionUnchanged, Product: p, Listing: listing})
		} else {
			cs.Changes = append(cs.Changes, domain.Change{Action: domain.ActionUpdate, Product: p, Listing: listing, Deltas: deltas})
		}
	}

	for i := range remote {
		l := &remote[i]
		if l.Handle == "" || matched[l.Handle] {
			continue
		}
		cs.Changes = append(cs.Changes, domain.Change{Action: domain.ActionRemoteOnly, Listing: l})
	}

	sort.SliceStable(cs.Changes, func(i, j int) bool { return cs.Changes[i].Handle() < cs.Changes[j].Handle() })

	s.logger.Info("diff computed",
		zap.Int("create", cs.Count(domain.ActionCreate)),
		zap.Int("update", cs.Count(domain.ActionUpdate)),
		zap.Int("unchanged", cs.Count(domain.ActionUnchanged)),
		zap.Int("remote_only", cs.Count(domain.ActionRemoteOnly)))
	return cs
}

// compareFields computes field-level deltas over the fixed comparison set:
// title, price, stock, body and primary image reference. The compare is
// tolerant of representational noise: strings are trimmed, prices compared at
// currency precision, absent and empty are equal.
func compareFields(p *domain.Product, l *domain.RemoteListing) []domain.FieldDelta {
	var deltas []domain.FieldDelta

	if d, changed := stringDelta("title", p.Title, l.Title); changed {
		deltas = append(deltas, d)
	}

	localPrice := p.BasePrice().Round(currencyPrecision)
	remotePrice := decimal.Zero
	if l.Price.Valid {
		remotePrice = l.Price.Decimal.Round(currencyPrecision)
	}
	if !localPrice.Equal(remotePrice) {
		deltas = append(deltas, domain.FieldDelta{
			Field:  "price",
			Local:  localPrice.StringFixed(currencyPrecision),
			Remote: remotePrice.StringFixed(currencyPrecision),
		})
	}

	if p.Stock != l.Stock {
		deltas = append(deltas, domain.FieldDelta{
			Field:  "stock",
			Local:  strconv.Itoa(p.Stock),
			Remote: strconv.Itoa(l.Stock),
		})
	}

	if d, changed := stringDelta("body_html", p.Body(), l.BodyHTML); changed {
		deltas = append(deltas, d)
	}

	if d, changed := primaryImageDelta(p, l); changed {
		deltas = append(deltas, d)
	}

	return deltas
}

func stringDelta(field, local, remote string) (domain.FieldDelta, bool) {
	local = strings.TrimSpace(local)
	remote = strings.TrimSpace(remote)
	if local == remote {
		return domain.FieldDelta{}, false
	}
	return domain.FieldDelta{Field: field, Local: local, Remote: remote}, true
}

// primaryImageDelta compares the local primary image reference against the
// listing's primary image URL. Shopify rewrites uploads onto its CDN, so the
// comparison only checks that the local filename still appears in the remote
// source; anything stricter would flag every product on every run.
func primaryImageDelta(p *domain.Product, l *domain.RemoteListing) (domain.FieldDelta, bool) {
	img, localHas := p.PrimaryImage()
	remoteHas := l.PrimaryImageSrc != ""

	if localHas != remoteHas {
		return domain.FieldDelta{Field: "primary_image", Local: img.Filename, Remote: l.PrimaryImageSrc}, true
	}
	if !localHas {
		return domain.FieldDelta{}, false
	}
	if img.Filename == "" {
		// No stable reference to compare against the CDN URL.
		return domain.FieldDelta{}, false
	}
	remoteName := path.Base(strings.SplitN(l.PrimaryImageSrc, "?", 2)[0])
	if strings.EqualFold(remoteName, img.Filename) || strings.Contains(remoteName, strings.TrimSuffix(img.Filename, path.Ext(img.Filename))) {
		return domain.FieldDelta{}, false
	}
	return domain.FieldDelta{Field: "primary_image", Local: img.Filename, Remote: l.PrimaryImageSrc}, true
}

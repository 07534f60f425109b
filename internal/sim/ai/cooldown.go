package ai

// Call sites that share one Gate. Each has its own counter.
type Site uint8

const (
	SiteWander Site = iota
	SiteQueue
	SiteFulfilment
	SiteDrink
	SitePay
	SiteJukebox
	SiteBathroom
	SiteClean
	SiteLeave

	siteCount
)

const (
	IntervalSearch     = 0.10
	IntervalIdle       = 0.25
	IntervalFulfilment = 0.50
)

// Gate throttles expensive per-agent work. Ready is true on the first call for
// a site and then at most once per interval.
type Gate struct {
	remaining [siteCount]float64
}

func (g *Gate) Ready(site Site, dt, interval float64) bool {
	if site >= siteCount {
		return false
	}
	g.remaining[site] -= dt
	if g.remaining[site] > 0 {
		return false
	}
	g.remaining[site] = interval
	return true
}

func (g *Gate) Reset() { *g = Gate{} }

package agent

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
)

// SimNode is one synthetic fleet member.
type SimNode struct {
	Profile
	ID string

	cpu         float64
	trafficUsed float64
}

func DefaultFleet() []*SimNode {
	node := func(id, name, loc, code, typ, os, bw, price string, tags ...models.Tag) *SimNode {
		return &SimNode{ID: id, Profile: Profile{
			Name: name, Loc: loc, Code: code, Type: typ, OS: os,
			BandwidthLimit: bw, Price: price, ExpireDate: "2025-12-31", Tags: tags,
		}}
	}
	tag := func(text, color string) models.Tag { return models.Tag{Text: text, Color: color} }
	return []*SimNode{
		node("hk-01", "HK-Premium-CN2", "Hong Kong", "hk", "KVM", "debian", "1000", "$19.90/mo", tag("CN2 GIA", "blue"), tag("SSD", "gray")),
		node("us-la", "US-LosAngeles-GIA", "United States", "us", "Dedicated", "ubuntu", "unlimited", "$59.00/mo", tag("GIA", "blue"), tag("10Gbps", "purple"), tag("Anti-DDoS", "green")),
		node("jp-tyo", "JP-Tokyo-Softbank", "Japan", "jp", "KVM", "centos", "2000", "$24.50/mo", tag("Softbank", "yellow"), tag("Native IP", "green")),
		node("sg-aws", "SG-AWS-Direct", "Singapore", "sg", "KVM", "amazonlinux", "500", "$8.00/mo", tag("AWS", "orange"), tag("Streaming", "red")),
		node("de-fra", "DE-Frankfurt-9929", "Germany", "de", "KVM", "debian", "unlimited", "$12.00/mo", tag("CU 9929", "indigo"), tag("HDD", "gray")),
		node("uk-lon", "UK-London-Linenode", "United Kingdom", "gb", "KVM", "ubuntu", "1000", "$10.00/mo", tag("BGP", "gray"), tag("Low Ping", "green")),
		node("kr-sel", "KR-Seoul-Oracle", "South Korea", "kr", "ARM", "oracle", "unlimited", "$0.00/mo", tag("Oracle Cloud", "red"), tag("ARM", "orange")),
		node("cn-sha", "CN-Shanghai-BGP", "China", "cn", "BareMetal", "windows", "5000", "¥499.00/mo", tag("BGP", "blue"), tag("High Speed", "purple"), tag("No-UDP", "gray")),
	}
}

// Simulator reports a synthetic fleet with drifting metrics.
type Simulator struct {
	client   *Client
	nodes    []*SimNode
	interval time.Duration
	mu       sync.Mutex
	rnd      *rand.Rand
	now      func() time.Time
}

func NewSimulator(client *Client, nodes []*SimNode, interval time.Duration) *Simulator {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, n := range nodes {
		n.cpu = rnd.Float64() * 50
		n.trafficUsed = rnd.Float64() * 100
	}
	return &Simulator{
		client:   client,
		nodes:    nodes,
		interval: interval,
		rnd:      rnd,
		now:      time.Now,
	}
}

func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	logger.Log.Info("Simulator started", "nodes", len(s.nodes), "interval", s.interval)
	for {
		s.Tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Tick posts one report per node concurrently and returns once all finished.
func (s *Simulator) Tick(ctx context.Context) {
	var wg sync.WaitGroup
	for _, n := range s.nodes {
		r := s.Next(n)
		wg.Add(1)
		go func(r *models.Report) {
			defer wg.Done()
			if err := s.client.Report(ctx, r); err != nil {
				logger.Log.Warn("Simulated report failed", "node", r.ID, "err", err)
			}
		}(r)
	}
	wg.Wait()
}

// Next advances n by one step and returns its report.
func (s *Simulator) Next(n *SimNode) *models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.cpu = math.Min(100, math.Max(0, n.cpu+(s.rnd.Float64()-0.5)*15))
	phase := float64(s.now().UnixMilli()) / 10000
	netIn := math.Abs(math.Sin(phase))*50 + s.rnd.Float64()*10
	netOut := math.Abs(math.Cos(phase))*40 + s.rnd.Float64()*5
	n.trafficUsed += (netIn + netOut) / 1024 / 8 * 0.5
	traffic := n.trafficUsed

	base := 180.0
	for _, t := range n.Tags {
		if strings.Contains(t.Text, "CN2") || strings.Contains(t.Text, "BGP") {
			base = 30
			break
		}
	}
	google, cloudflare := 150.0, 140.0
	if n.Code == "us" {
		google, cloudflare = 10, 5
	}

	r := &models.Report{
		ID:          n.ID,
		CPU:         n.cpu,
		RAM:         math.Floor(40 + s.rnd.Float64()*20),
		Disk:        45,
		NetIn:       &netIn,
		NetOut:      &netOut,
		TrafficUsed: &traffic,
		PingData: []models.PingResult{
			{Target: "China Telecom", MS: s.fluctuate(base, 20)},
			{Target: "China Unicom", MS: s.fluctuate(base+10, 20)},
			{Target: "China Mobile", MS: s.fluctuate(base+5, 30)},
			{Target: "Google", MS: s.fluctuate(google, 10)},
			{Target: "Cloudflare", MS: s.fluctuate(cloudflare, 10)},
		},
	}
	n.Profile.Apply(r)
	return r
}

func (s *Simulator) fluctuate(base, variance float64) float64 {
	return math.Max(1, math.Floor(base+(s.rnd.Float64()-0.5)*variance))
}

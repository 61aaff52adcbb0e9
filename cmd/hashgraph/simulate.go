package main

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/bragov4ik/go-hashgraph/common"
	"github.com/bragov4ik/go-hashgraph/consensus/hashgraph"
	hgsync "github.com/bragov4ik/go-hashgraph/consensus/hashgraph/sync"
	"github.com/bragov4ik/go-hashgraph/core/rawdb"
	"github.com/bragov4ik/go-hashgraph/crypto"
	"github.com/bragov4ik/go-hashgraph/hashdb"
	"github.com/bragov4ik/go-hashgraph/hashdb/leveldb"
	"github.com/bragov4ik/go-hashgraph/hashdb/memorydb"
)

var log = logrus.WithField("prefix", "simulate")

var (
	peersFlag = &cli.IntFlag{
		Name:  "peers",
		Usage: "number of members in the gossip network",
		Value: 4,
	}
	eventsFlag = &cli.IntFlag{
		Name:  "events",
		Usage: "number of gossip events to create after the geneses",
		Value: 100,
	}
	coinFrequencyFlag = &cli.Uint64Flag{
		Name:  "coin-frequency",
		Usage: "distance between coin rounds in fame elections (>= 2)",
		Value: 10,
	}
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "gossip randomness seed",
		Value: 1,
	}
	datadirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "persist the graph into a LevelDB database at this path (in-memory when empty)",
	}
)

var commandSimulate = &cli.Command{
	Name:   "simulate",
	Usage:  "build a random gossip graph and report its consensus state",
	Flags:  []cli.Flag{peersFlag, eventsFlag, coinFrequencyFlag, seedFlag, datadirFlag},
	Action: simulate,
}

func simulate(ctx *cli.Context) error {
	peers := ctx.Int(peersFlag.Name)
	if peers < 2 {
		return fmt.Errorf("need at least 2 peers, have %d", peers)
	}
	events := ctx.Int(eventsFlag.Name)
	rng := rand.New(rand.NewSource(ctx.Int64(seedFlag.Name)))

	// Identity signatures: the simulation has no real keys.
	g, err := hashgraph.New(0, []byte("genesis-0"), ctx.Uint64(coinFrequencyFlag.Name),
		crypto.IdentitySigner, crypto.IdentityVerify)
	if err != nil {
		return err
	}
	for id := 1; id < peers; id++ {
		payload := []byte(fmt.Sprintf("genesis-%d", id))
		if _, err := g.CreateGenesis(payload, common.PeerID(id)); err != nil {
			return err
		}
	}

	// Random gossip: each event records an exchange with a random other peer.
	for i := 0; i < events; i++ {
		author := common.PeerID(rng.Intn(peers))
		other := common.PeerID(rng.Intn(peers - 1))
		if other >= author {
			other++
		}
		otherTip, ok := g.PeerLatestEvent(other)
		if !ok {
			return fmt.Errorf("no tip for peer %d", other)
		}
		payload := []byte(fmt.Sprintf("gossip-%d", i))
		if _, err := g.CreateEvent(payload, otherTip, author); err != nil {
			return err
		}
	}

	famous, notFamous, undecided := 0, 0, 0
	for _, witness := range g.Witnesses() {
		fame, err := g.DecideFame(witness)
		if err != nil {
			return err
		}
		switch fame {
		case hashgraph.FameFamous:
			famous++
		case hashgraph.FameNotFamous:
			notFamous++
		default:
			undecided++
		}
	}
	log.WithFields(logrus.Fields{
		"peers":     peers,
		"events":    events + peers,
		"rounds":    g.LastRound() + 1,
		"witnesses": famous + notFamous + undecided,
		"famous":    famous,
		"notFamous": notFamous,
		"undecided": undecided,
	}).Info("Gossip graph built")

	// A fresh peer knows nothing: the job list is the whole graph in
	// topological order.
	jobs, err := hgsync.Generate(g,
		func(common.Hash) bool { return false },
		g.Tips(), g.SignedEvent)
	if err != nil {
		return err
	}
	log.WithField("jobs", jobs.Len()).Info("Sync jobs for an empty peer generated")

	return persist(ctx, g, jobs)
}

// persist stores the generated events and per-peer tips through the rawdb
// accessors, into LevelDB under --datadir or an in-memory store otherwise.
func persist(ctx *cli.Context, g *hashgraph.Graph, jobs *hgsync.Jobs) error {
	var db hashdb.KeyValueStore
	if dir := ctx.String(datadirFlag.Name); dir != "" {
		ldb, err := leveldb.New(dir)
		if err != nil {
			return err
		}
		db = ldb
	} else {
		db = memorydb.New()
	}
	defer db.Close()

	for _, ev := range jobs.Events() {
		if err := rawdb.WriteEvent(db, ev); err != nil {
			return err
		}
	}
	for _, peer := range g.Peers() {
		tip, ok := g.PeerLatestEvent(peer)
		if !ok {
			continue
		}
		if err := rawdb.WritePeerTip(db, peer, tip); err != nil {
			return err
		}
	}
	log.WithField("events", jobs.Len()).Info("Graph persisted")
	return nil
}

package simulation

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"wise-brd/logger"
	"wise-brd/model"
	"wise-brd/utils"
	"wise-brd/wise"

	"github.com/cockroachdb/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type Scenario struct {
	dir        string
	metadata   *ScenarioMetadata
	graph      *model.Graph
	params     *model.BRDModelParams
	selectors  map[string]model.WiseNodeSelector
	seeder     model.WiseNodeSelector
	state      *SweepState
	serializer *SimulationSerializer
	db         *EventDB
	log        *zap.SugaredLogger

	pending []*model.EventRecord

	// Quiet hides the progress bar
	Quiet bool
}

func NewScenario(dir string, metadata *ScenarioMetadata) *Scenario {
	return &Scenario{
		dir:        dir,
		metadata:   metadata,
		serializer: NewSimulationSerializer(dir, metadata.UniqueName, MAX_SNAPSHOT_COUNT),
		seeder:     wise.NewRandom(),
		log:        logger.Named("scenario").With("scenario", metadata.UniqueName),
	}
}

const MAX_SNAPSHOT_COUNT = 3
const SAVE_INTERVAL = 300 // seconds

func (s *Scenario) Graph() *model.Graph {
	return s.graph
}

func (s *Scenario) State() *SweepState {
	return s.state
}

func (s *Scenario) Serializer() *SimulationSerializer {
	return s.serializer
}

func (s *Scenario) DB() *EventDB {
	return s.db
}

// BuildNetwork creates the contact network described by the options.
// Generated networks draw from an rng seeded with seed.
func BuildNetwork(opts *NetworkOptions, seed int64) (*model.Graph, error) {
	rng := rand.New(rand.NewSource(seed))
	switch opts.Type {
	case NetworkFile:
		return model.LoadEdgeListFile(opts.Path, opts.NodeCount)
	case NetworkRandom:
		return model.FromUndirected(
			utils.CreateRandomNetwork(opts.NodeCount, opts.EdgeProbability, rng),
		), nil
	case NetworkSmallWorld:
		return model.FromUndirected(
			utils.CreateSmallWorldNetwork(opts.NodeCount, opts.NeighborCount, opts.RewireProbability, rng),
		), nil
	}
	return nil, errors.Wrapf(model.ErrInvalidParameter, "unknown network type %q", opts.Type)
}

func (s *Scenario) prepare() error {
	params, err := s.metadata.ModelParams()
	if err != nil {
		return err
	}
	s.params = params

	factories := GetDefaultSelectorFactoryDefs(s.metadata.MixRate)
	s.selectors = make(map[string]model.WiseNodeSelector, len(s.metadata.Strategies))
	for _, name := range s.metadata.Strategies {
		factory, ok := factories[name]
		if !ok {
			return errors.Wrapf(model.ErrInvalidParameter, "unknown strategy %q", name)
		}
		s.selectors[name] = factory(s.graph)
	}

	db, err := OpenEventDB(filepath.Join(s.serializer.GetSimulationDir(), "events.db"))
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Init builds the network and a fresh sweep
func (s *Scenario) Init() error {
	g, err := BuildNetwork(&s.metadata.Network, s.metadata.Seed)
	if err != nil {
		return errors.Wrap(err, "build network")
	}
	s.graph = g

	if err := os.MkdirAll(s.serializer.GetSimulationDir(), 0755); err != nil {
		return errors.Wrap(err, "failed to create scenario dump folder")
	}

	if err := s.prepare(); err != nil {
		return err
	}
	s.state = NewSweepState()

	// a fresh sweep owns the whole table
	if err := s.db.DeleteTrialsFromCell(0); err != nil {
		return err
	}
	if err := s.serializer.SaveMetadata(s.metadata); err != nil {
		return errors.Wrap(err, "save metadata")
	}
	if err := s.serializer.SaveGraph(utils.SerializeGraph(g.Undirected())); err != nil {
		return errors.Wrap(err, "save graph")
	}

	s.log.Infow("scenario initialized",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cells", len(s.metadata.Cells()),
	)
	return nil
}

// Load resumes from the latest snapshot. It returns false when there is
// nothing usable to resume from.
func (s *Scenario) Load() bool {
	state, err := s.serializer.GetLatestSnapshot()
	if err != nil {
		s.log.Warnw("failed to load snapshot", "error", err)
		return false
	}
	if state == nil {
		return false
	}
	if !state.validate(s.metadata.Cells()) {
		s.log.Warnw("snapshot does not match the sweep", "next_cell", state.NextCell)
		return false
	}

	nx, err := s.serializer.LoadGraph()
	if err != nil || nx == nil {
		s.log.Warnw("failed to load graph", "error", err)
		return false
	}
	s.graph = model.FromUndirected(utils.DeserializeGraph(nx))

	if err := s.prepare(); err != nil {
		s.log.Warnw("failed to prepare scenario", "error", err)
		return false
	}

	// drop trials written after the snapshot
	if err := s.db.DeleteTrialsFromCell(state.NextCell); err != nil {
		s.log.Warnw("failed to clean trials", "error", err)
		return false
	}

	s.state = state
	s.log.Infow("scenario resumed", "next_cell", state.NextCell)
	return true
}

func (s *Scenario) Dump() error {
	return s.serializer.SaveSnapshot(s.state)
}

func (s *Scenario) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Scenario) IsFinished() bool {
	finished, _ := s.serializer.IsFinished()
	return finished
}

// trialSeed derives a distinct rng seed for every trial of the sweep
func trialSeed(base int64, cellIndex int, trial int) int64 {
	return base + int64(cellIndex)*1_000_003 + int64(trial)*7_919 + 1
}

// RunTrial samples seeds and wise nodes for one trial and runs the model
func (s *Scenario) RunTrial(cellIndex int, key CellKey, trial int) (TrialRecord, []model.RoundCount, error) {
	seed := trialSeed(s.metadata.Seed, cellIndex, trial)
	rng := rand.New(rand.NewSource(seed))

	seeds, err := s.seeder.Select(s.graph, key.K, nil, rng)
	if err != nil {
		return TrialRecord{}, nil, errors.Wrap(err, "sample seeds")
	}
	excluded := make(map[int64]bool, len(seeds))
	for _, id := range seeds {
		excluded[id] = true
	}

	selector, ok := s.selectors[key.Strategy]
	if !ok {
		return TrialRecord{}, nil, errors.Wrapf(model.ErrInvalidParameter, "unknown strategy %q", key.Strategy)
	}
	wiseNodes, err := selector.Select(s.graph, key.W, excluded, rng)
	if err != nil {
		return TrialRecord{}, nil, errors.Wrapf(err, "select wise nodes with %s", selector.Name())
	}

	s.pending = s.pending[:0]
	var eventLogger func(*model.EventRecord)
	if s.metadata.Collect.FlipEvent {
		eventLogger = s.logEvent
	}

	m, err := model.NewBRDModel(s.graph, seeds, wiseNodes, s.params, eventLogger)
	if err != nil {
		return TrialRecord{}, nil, err
	}
	result := m.StepTillEnd()
	last := result.Rounds[len(result.Rounds)-1]

	rec := TrialRecord{
		Trial:      trial,
		Seed:       seed,
		Infected:   last.Infected,
		Uninfected: last.Uninfected,
		Wise:       last.Wise,
		Rounds:     m.CurRound,
		Converged:  result.Converged,
	}

	if err := s.db.StoreTrial(cellIndex, key, rec, s.pending); err != nil {
		return rec, nil, err
	}
	if s.metadata.Collect.FinalState {
		if err := s.serializer.SaveFinalState(cellIndex, trial, m.Dump()); err != nil {
			return rec, nil, errors.Wrap(err, "save final state")
		}
	}

	return rec, result.Rounds, nil
}

// Run executes every remaining cell. Cancelling ctx stops between trials
// after saving a snapshot that excludes the unfinished cell.
func (s *Scenario) Run(ctx context.Context) (err error) {
	if s.IsFinished() {
		return nil
	}

	if err := s.serializer.Lock(); err != nil {
		return errors.Wrap(err, "lock scenario")
	}
	defer func() {
		if uerr := s.serializer.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()

	cells := s.metadata.Cells()
	trials := s.metadata.Trials
	total := len(cells) * trials

	var bar *progressbar.ProgressBar
	if s.Quiet {
		bar = progressbar.DefaultSilent(int64(total))
	} else {
		bar = progressbar.Default(int64(total))
	}
	bar.Set(s.state.NextCell * trials)
	defer bar.Close()

	lastSaveTime := time.Now()

	for idx := s.state.NextCell; idx < len(cells); idx++ {
		key := cells[idx]
		cell := NewCellResult(key, trials)
		series := make([][]model.RoundCount, 0, trials)

		for trial := range trials {
			if err := ctx.Err(); err != nil {
				if derr := s.Dump(); derr != nil {
					s.log.Errorw("failed to save snapshot", "error", derr)
				}
				return err
			}

			rec, rounds, err := s.RunTrial(idx, key, trial)
			if err != nil {
				return errors.Wrapf(err, "cell k=%d w=%d %s trial %d", key.K, key.W, key.Strategy, trial)
			}
			cell.accumulate(rec)
			series = append(series, rounds)
			bar.Add(1)
		}

		cell.finalize()
		s.state.accumulate(cell)

		s.log.Infow("cell finished",
			"k", key.K,
			"w", key.W,
			"strategy", key.Strategy,
			"mean_infected", cell.MeanInfected,
			"std_infected", cell.StdInfected,
		)

		if s.metadata.Collect.RoundSeries {
			if err := s.serializer.SaveRoundSeries(idx, series); err != nil {
				return errors.Wrap(err, "save round series")
			}
		}

		if time.Since(lastSaveTime).Seconds() >= SAVE_INTERVAL {
			lastSaveTime = time.Now()
			if err := s.Dump(); err != nil {
				return errors.Wrap(err, "save snapshot")
			}
		}
	}

	// finally save everything
	if err := s.Dump(); err != nil {
		return errors.Wrap(err, "save snapshot")
	}
	if s.metadata.Collect.Plot {
		files, err := SaveSpreadPlots(s.serializer.GetSimulationDir(), s.metadata, s.state.Cells)
		if err != nil {
			return err
		}
		s.log.Infow("plots saved", "files", files)
	}
	return s.serializer.MarkFinished()
}

func (s *Scenario) logEvent(event *model.EventRecord) {
	if event.Type == model.EventFlip {
		s.pending = append(s.pending, event)
	}
}

package simulation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wise-brd/model"
	"wise-brd/utils"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// SimulationSerializer owns the on-disk layout of one scenario directory
type SimulationSerializer struct {
	baseDir          string
	simulationID     string
	maxSnapshotCount int
}

func NewSimulationSerializer(baseDir string, simulationID string, maxSnapshotCount int) *SimulationSerializer {
	return &SimulationSerializer{
		baseDir:          baseDir,
		simulationID:     simulationID,
		maxSnapshotCount: maxSnapshotCount,
	}
}

func (s *SimulationSerializer) GetSimulationDir() string {
	return filepath.Join(s.baseDir, s.simulationID)
}

func (s *SimulationSerializer) Exists() bool {
	_, err := os.Stat(s.GetSimulationDir())
	return !os.IsNotExist(err)
}

func (s *SimulationSerializer) ensureSimulationDir() error {
	return os.MkdirAll(s.GetSimulationDir(), 0755)
}

func (s *SimulationSerializer) path(name string) string {
	return filepath.Join(s.GetSimulationDir(), name)
}

// #region serialize

func (s *SimulationSerializer) _list(fileType string, suffixName string) ([]string, error) {
	dir := s.GetSimulationDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), fileType+"-") && strings.HasSuffix(entry.Name(), suffixName) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	// timestamps sort lexically
	sort.Strings(files)
	return files, nil
}

func (s *SimulationSerializer) _read(filePath string, out any) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s", filePath)
	}
	return nil
}

func (s *SimulationSerializer) _getFilePath(fileType string, suffixName string) string {
	timestamp := time.Now().UTC().Format("20060102T150405.000000000Z")
	filename := fmt.Sprintf("%s-%s%s", fileType, timestamp, suffixName)
	return s.path(filename)
}

func (s *SimulationSerializer) _write(fileType string, snapshot any) error {
	if err := s.ensureSimulationDir(); err != nil {
		return err
	}

	data, err := msgpack.Marshal(snapshot)
	if err != nil {
		return err
	}

	if err := os.WriteFile(s._getFilePath(fileType, ".msgpack"), data, 0644); err != nil {
		return err
	}

	return s._clean(fileType, false, ".msgpack")
}

// _clean keeps the newest maxSnapshotCount files, or none if all is set
func (s *SimulationSerializer) _clean(fileType string, all bool, suffixName string) error {
	if !all && s.maxSnapshotCount <= 0 {
		return nil
	}

	files, err := s._list(fileType, suffixName)
	if err != nil {
		return err
	}

	toDelete := len(files)
	if !all {
		if len(files) > s.maxSnapshotCount {
			toDelete -= s.maxSnapshotCount
		} else {
			toDelete = 0
		}
	}

	for i := range toDelete {
		if err := os.Remove(files[i]); err != nil {
			return err
		}
	}

	return nil
}

// #endregion

// #region snapshot

// GetLatestSnapshot returns nil without error when no snapshot exists
func (s *SimulationSerializer) GetLatestSnapshot() (*SweepState, error) {
	if !s.Exists() {
		return nil, nil
	}
	files, err := s._list("snapshot", ".msgpack")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	var state SweepState
	if err := s._read(files[len(files)-1], &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *SimulationSerializer) SaveSnapshot(state *SweepState) error {
	return s._write("snapshot", state)
}

// #endregion

// #region finished mark

type FinishMark struct {
	FinishedAt time.Time
}

func (s *SimulationSerializer) MarkFinished() error {
	return s._write("finished", &FinishMark{FinishedAt: time.Now().UTC()})
}

func (s *SimulationSerializer) IsFinished() (bool, error) {
	if !s.Exists() {
		return false, nil
	}
	files, err := s._list("finished", ".msgpack")
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// #endregion

// #region lock

// Lock marks the directory as being written so the archiver skips it
func (s *SimulationSerializer) Lock() error {
	if err := s.ensureSimulationDir(); err != nil {
		return err
	}
	return os.WriteFile(s.path("lock"), []byte(fmt.Sprint(os.Getpid())), 0644)
}

func (s *SimulationSerializer) Unlock() error {
	err := os.Remove(s.path("lock"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// #endregion

// #region round series

func (s *SimulationSerializer) roundSeriesPath(cellIndex int) string {
	return s.path(fmt.Sprintf("series-%04d.lz4", cellIndex))
}

func (s *SimulationSerializer) SaveRoundSeries(cellIndex int, series [][]model.RoundCount) error {
	if err := s.ensureSimulationDir(); err != nil {
		return err
	}
	return SaveRoundSeries(s.roundSeriesPath(cellIndex), series)
}

// LoadRoundSeries returns nil without error when the cell has no series
func (s *SimulationSerializer) LoadRoundSeries(cellIndex int) ([][]model.RoundCount, error) {
	p := s.roundSeriesPath(cellIndex)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadRoundSeries(p)
}

// #endregion

// #region final state

func (s *SimulationSerializer) finalStatePath(cellIndex int, trial int) string {
	return s.path(fmt.Sprintf("state-%04d-%03d.msgpack", cellIndex, trial))
}

func (s *SimulationSerializer) SaveFinalState(cellIndex int, trial int, dump *model.BRDModelDumpData) error {
	if err := s.ensureSimulationDir(); err != nil {
		return err
	}
	data, err := msgpack.Marshal(dump)
	if err != nil {
		return err
	}
	return os.WriteFile(s.finalStatePath(cellIndex, trial), data, 0644)
}

func (s *SimulationSerializer) LoadFinalState(cellIndex int, trial int) (*model.BRDModelDumpData, error) {
	var dump model.BRDModelDumpData
	if err := s._read(s.finalStatePath(cellIndex, trial), &dump); err != nil {
		return nil, err
	}
	return &dump, nil
}

// #endregion

// #region graph

func (s *SimulationSerializer) SaveGraph(graph *utils.NetworkXGraph) error {
	if err := s.ensureSimulationDir(); err != nil {
		return err
	}

	data, err := msgpack.Marshal(graph)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path("graph.msgpack"), data, 0644)
}

// LoadGraph returns nil without error when no graph was saved
func (s *SimulationSerializer) LoadGraph() (*utils.NetworkXGraph, error) {
	p := s.path("graph.msgpack")
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil, nil
	}

	var graph utils.NetworkXGraph
	if err := s._read(p, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// #endregion

func (s *SimulationSerializer) SaveMetadata(metadata *ScenarioMetadata) error {
	if err := s.ensureSimulationDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(metadata)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path("metadata.yaml"), data, 0644)
}

// LoadMetadata returns nil without error when the scenario does not exist
func (s *SimulationSerializer) LoadMetadata() (*ScenarioMetadata, error) {
	if !s.Exists() {
		return nil, nil
	}

	data, err := os.ReadFile(s.path("metadata.yaml"))
	if err != nil {
		return nil, err
	}

	var metadata ScenarioMetadata
	if err := yaml.Unmarshal(data, &metadata); err != nil {
		return nil, errors.Wrap(err, "decode metadata")
	}

	return &metadata, nil
}

package simulation

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"wise-brd/model"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"
)

// SaveRoundSeries writes the per-round counts of every trial of a cell as
// little endian int32 records, lz4 compressed:
// trials, then per trial the round count and (round, infected, uninfected, wise)
func SaveRoundSeries(path string, series [][]model.RoundCount) error {
	var buf bytes.Buffer

	write := func(v int) error {
		return binary.Write(&buf, binary.LittleEndian, int32(v))
	}

	if err := write(len(series)); err != nil {
		return err
	}
	for _, rounds := range series {
		if err := write(len(rounds)); err != nil {
			return err
		}
		for _, c := range rounds {
			for _, v := range [4]int{c.Round, c.Infected, c.Uninfected, c.Wise} {
				if err := write(v); err != nil {
					return err
				}
			}
		}
	}

	var out bytes.Buffer
	w := lz4.NewWriter(&out)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "compress round series")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "compress round series")
	}

	return os.WriteFile(path, out.Bytes(), 0644)
}

func LoadRoundSeries(path string) ([][]model.RoundCount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(raw))); err != nil {
		return nil, errors.Wrapf(err, "decompress round series %s", path)
	}
	reader := bytes.NewReader(buf.Bytes())

	read := func() (int, error) {
		var v int32
		if err := binary.Read(reader, binary.LittleEndian, &v); err != nil {
			return 0, errors.Wrapf(model.ErrMalformedInput, "round series %s: %v", path, err)
		}
		return int(v), nil
	}

	trials, err := read()
	if err != nil {
		return nil, err
	}
	series := make([][]model.RoundCount, trials)
	for i := range series {
		rounds, err := read()
		if err != nil {
			return nil, err
		}
		series[i] = make([]model.RoundCount, rounds)
		for j := range series[i] {
			var v [4]int
			for x := range v {
				if v[x], err = read(); err != nil {
					return nil, err
				}
			}
			series[i][j] = model.RoundCount{
				Round:      v[0],
				Infected:   v[1],
				Uninfected: v[2],
				Wise:       v[3],
			}
		}
	}

	return series, nil
}

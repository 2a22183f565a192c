package features

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/neuropulse/internal/models"
)

// Target column names in exported files.
const (
	DopamineColumn  = "dopamine_spike_flag"
	AddictionColumn = "addiction_level"
)

// BatchRows is the number of rows per Arrow record batch.
const BatchRows = 4096

// Schema returns the Arrow schema for a training set with the given
// feature columns: one float64 field per feature, then the two int8 targets.
func Schema(columns []string) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(columns)+2)
	for _, c := range columns {
		fields = append(fields, arrow.Field{Name: c, Type: arrow.PrimitiveTypes.Float64})
	}
	fields = append(fields,
		arrow.Field{Name: DopamineColumn, Type: arrow.PrimitiveTypes.Int8},
		arrow.Field{Name: AddictionColumn, Type: arrow.PrimitiveTypes.Int8},
	)
	md := arrow.NewMetadata([]string{"producer"}, []string{"neuropulse"})
	return arrow.NewSchema(fields, &md)
}

// WriteArrow writes ts to w as an Arrow IPC stream.
func WriteArrow(w io.Writer, ts TrainingSet) error {
	if ts.Features == nil {
		return fmt.Errorf("training set has no features: %w", models.ErrInvalidArgument)
	}
	n := ts.Features.Rows()
	if len(ts.Dopamine) != n || len(ts.Addiction) != n {
		return fmt.Errorf("targets not aligned: %d rows, %d dopamine, %d addiction: %w",
			n, len(ts.Dopamine), len(ts.Addiction), models.ErrInvalidArgument)
	}

	mem := memory.NewGoAllocator()
	schema := Schema(ts.Features.columns)
	writer := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	cols := ts.Features.Cols()
	for start := 0; start < n; start += BatchRows {
		end := min(start+BatchRows, n)
		for j := 0; j < cols; j++ {
			fb := builder.Field(j).(*array.Float64Builder)
			fb.Reserve(end - start)
			for i := start; i < end; i++ {
				fb.UnsafeAppend(ts.Features.At(i, j))
			}
		}
		builder.Field(cols).(*array.Int8Builder).AppendValues(ts.Dopamine[start:end], nil)
		builder.Field(cols+1).(*array.Int8Builder).AppendValues(ts.Addiction[start:end], nil)

		rec := builder.NewRecord()
		err := writer.Write(rec)
		rec.Release()
		if err != nil {
			_ = writer.Close()
			return fmt.Errorf("write record batch at row %d: %w", start, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close arrow stream: %w", err)
	}
	return nil
}

// ReadArrow reads a stream written by WriteArrow.
func ReadArrow(r io.Reader) (TrainingSet, error) {
	mem := memory.NewGoAllocator()
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return TrainingSet{}, fmt.Errorf("open arrow stream: %w", err)
	}
	defer rdr.Release()

	schema := rdr.Schema()
	nf := schema.NumFields() - 2
	if nf < 0 ||
		schema.Field(nf).Name != DopamineColumn ||
		schema.Field(nf+1).Name != AddictionColumn {
		return TrainingSet{}, errors.New("arrow stream does not end with the target columns")
	}
	columns := make([]string, nf)
	for j := range columns {
		columns[j] = schema.Field(j).Name
	}

	var (
		data      []float64
		dopamine  []int8
		addiction []int8
		rows      int
	)
	for rdr.Next() {
		rec := rdr.Record()
		batch := int(rec.NumRows())
		feats := make([][]float64, nf)
		for j := range feats {
			col, ok := rec.Column(j).(*array.Float64)
			if !ok {
				return TrainingSet{}, fmt.Errorf("column %q is %s, want float64", columns[j], rec.Column(j).DataType())
			}
			feats[j] = col.Float64Values()
		}
		for i := 0; i < batch; i++ {
			for j := range feats {
				data = append(data, feats[j][i])
			}
		}
		d, ok1 := rec.Column(nf).(*array.Int8)
		a, ok2 := rec.Column(nf + 1).(*array.Int8)
		if !ok1 || !ok2 {
			return TrainingSet{}, errors.New("target columns must be int8")
		}
		dopamine = append(dopamine, d.Int8Values()...)
		addiction = append(addiction, a.Int8Values()...)
		rows += batch
	}
	if err := rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return TrainingSet{}, fmt.Errorf("read arrow stream: %w", err)
	}

	m := &Matrix{rows: rows, columns: columns, data: data}
	if m.data == nil {
		m.data = []float64{}
	}
	return TrainingSet{Features: m, Dopamine: nonNil(dopamine), Addiction: nonNil(addiction)}, nil
}

func nonNil(s []int8) []int8 {
	if s == nil {
		return []int8{}
	}
	return s
}

package storage

import (
	"encoding/json"
	"fmt"

	"github.com/primdb/primdb/internal/types"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetRecord is the flat record written per row: the table name and the
// row itself as a JSON payload, so one record shape covers every schema.
type parquetRecord struct {
	TableName string `parquet:"name=table_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	DataJSON  string `parquet:"name=data_json, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ExportParquet snapshots a table's rows into a Parquet file at path.
// The JSON documents stay the source of truth; the export is read-only.
func ExportParquet(table *types.Table, path string) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("%w: creating export file %q: %v", types.ErrStorage, path, err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(parquetRecord), 4)
	if err != nil {
		return fmt.Errorf("%w: exporting table %q: %v", types.ErrStorage, table.Name, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range table.Rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("%w: exporting table %q: %v", types.ErrStorage, table.Name, err)
		}
		rec := &parquetRecord{TableName: table.Name, DataJSON: string(data)}
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("%w: exporting table %q: %v", types.ErrStorage, table.Name, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("%w: exporting table %q: %v", types.ErrStorage, table.Name, err)
	}
	return nil
}

package fdb

// Context labels attached to hash index buckets
const (
	ScanContext        = "scan"
	DatabaseContext    = "database"
	SourceContext      = "source"
	DestinationContext = "destination"
)

// Persisted inventory format
const (
	Delimiter      = ','
	LineTerminator = "\r\n"
	IgnoreSep      = ","
	NotAvailable   = "NA"
	TimeLayout     = "2006-01-02T15:04:05.000000000Z07:00"
	LegacyLayout   = "2006-01-02 15:04:05.999999"
	ColumnCount    = 6
	PathColumnAlt  = "path"
)

// Columns is the fixed inventory header, in order
var Columns = []string{
	"filename",
	"extension",
	"created",
	"modified",
	"size",
	"hash",
}

// HashBufferSize is the read size used when streaming file content into a hash
const HashBufferSize = 64 * 1024

// Hash size constants
const (
	HashSizeMD5    = 16
	HashSizeSHA1   = 20
	HashSizeSHA256 = 32
	HashSizeSHA512 = 64
)

// DefaultHashAlgorithm is used when no configuration names one
const DefaultHashAlgorithm = "md5"

// DefaultHashWorkers is the fallback worker pool size
const DefaultHashWorkers = 4

package schema

// Custom string types for type safety.
type (
	// StreamKind is the record kind in the first field of a log line.
	StreamKind string

	// GravityStrategy selects how gravity is removed from raw acceleration.
	GravityStrategy string

	// TruthFrame describes the coordinates of the ground-truth position stream.
	TruthFrame string

	// OutputMode represents the format of the output.
	OutputMode string

	// SinkKind selects where rendered series are sent.
	SinkKind string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// Stage names a step of the dead-reckoning pipeline.
	Stage string
)

// All record kinds found in sensor logs.
const (
	PositionStream      StreamKind = "POSI"
	AccelerationStream  StreamKind = "ACCE"
	GyroscopeStream     StreamKind = "GYRO"
	MagnetometerStream  StreamKind = "MAGN"
	OrientationStream   StreamKind = "AHRS"
	CommentPrefix                  = "%"
	FieldSeparator                 = ";"
	DefaultLogExtension            = ".log"
)

// All gravity compensation strategies supported.
const (
	MeanStrategy     GravityStrategy = "mean"
	RotationStrategy GravityStrategy = "rotation" // default
)

// All ground-truth frames supported.
const (
	LocalFrame    TruthFrame = "local" // default, already metric
	GeodeticFrame TruthFrame = "geodetic"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All render sinks supported.
const (
	NoSink   SinkKind = "none" // default
	PNGSink  SinkKind = "png"
	MQTTSink SinkKind = "mqtt"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Pipeline stages, named the way output files are named.
const (
	AcceRawStage Stage = "acce_row"
	AhrsRawStage Stage = "ahrs_row"
	VeloRawStage Stage = "velo_row"
	PosiRawStage Stage = "posi_row"
	AcceNoGStage Stage = "acce_nog"
	VeloNoGStage Stage = "velo_nog"
	PosiNoGStage Stage = "posi_nog"
	PosiOrgStage Stage = "posi_org"
)

// Axis labels handed to render sinks alongside each stage.
var (
	AcceLabels = [3]string{"AcceX", "AcceY", "AcceZ"}
	AhrsLabels = [3]string{"PitchX", "RollY", "YawZ"}
	VeloLabels = [3]string{"VeloX", "VeloY", "VeloZ"}
	PosiLabels = [3]string{"PosiX", "PosiY", "PosiZ"}
)

// AllStreamKinds returns every record kind in log order.
var AllStreamKinds = []StreamKind{PositionStream, AccelerationStream, GyroscopeStream, MagnetometerStream, OrientationStream}

// AllStrategies returns every gravity strategy.
var AllStrategies = []GravityStrategy{MeanStrategy, RotationStrategy}

// ValidStreamKinds lists all record kinds the parser keeps.
var ValidStreamKinds = map[StreamKind]struct{}{
	PositionStream:     {},
	AccelerationStream: {},
	GyroscopeStream:    {},
	MagnetometerStream: {},
	OrientationStream:  {},
}

// ValidStrategies lists all valid gravity strategies.
var ValidStrategies = map[GravityStrategy]struct{}{
	MeanStrategy:     {},
	RotationStrategy: {},
}

// ValidTruthFrames lists all valid ground-truth frames.
var ValidTruthFrames = map[TruthFrame]struct{}{
	LocalFrame:    {},
	GeodeticFrame: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidSinkKinds lists all valid render sinks.
var ValidSinkKinds = map[SinkKind]struct{}{
	NoSink:   {},
	PNGSink:  {},
	MQTTSink: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

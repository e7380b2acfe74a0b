package config

const (
	// MinPricePerQuery is 0.0001 of the native unit.
	MinPricePerQuery uint64 = 100_000
	// MaxPricePerQuery is 100 of the native unit.
	MaxPricePerQuery uint64 = 100_000_000_000

	MinStakeAmount uint64 = 1_000_000
	MaxStakeAmount uint64 = 1_000_000_000_000

	StakeLockPeriod int64 = 7 * 24 * 60 * 60

	InitialReputation uint64 = 10_000
)

const (
	MaxAgentIDLen     = 32
	MaxCapsuleIDLen   = 32
	MaxPoolCapsuleLen = 64
	MaxNameLen        = 128
	MaxDisplayNameLen = 128
	MaxPlatformLen    = 32
	MaxDescriptionLen = 512
	MaxCategoryLen    = 32
)

const (
	DefaultLamportsPerByteYear uint64 = 3480
	MaxLamportsPerByteYear     uint64 = 1_000_000_000
	ReservationExemptionYears  uint64 = 2
	// RecordStorageOverhead is charged on top of every record's own size.
	RecordStorageOverhead uint64 = 128
)

// ReservationCost is the balance a record must hold for its storage to be
// kept. It moves from the payer into the record on creation and never
// leaves it.
func ReservationCost(lamportsPerByteYear uint64, size int) uint64 {
	return (RecordStorageOverhead + uint64(size)) * lamportsPerByteYear * ReservationExemptionYears
}

package metrics

type Metrics interface {
	// The total node count of the mmr
	Size(uint64)
	// The number of leaves pushed
	LeafCount(uint64)
	// The number of current peaks
	PeakCount(int)
	// The pruning horizon of the backend
	BaseOffset(uint64)
	// The number of durable checkpoints
	CheckpointCount(int)
	// The number of node hashes in the last committed checkpoint
	ChangeSize(int)
}

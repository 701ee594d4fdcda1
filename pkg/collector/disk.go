package collector

// DiskCollector reports used and total bytes of the filesystem holding Path.
type DiskCollector struct {
	Path string
}

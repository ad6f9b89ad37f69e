package logtidy

// Bucket is a day-bucket directory awaiting its fold into an archive.
type Bucket struct {
	Key string
	Dir *Path
}

// StagingArea groups log files into day buckets before they are folded into
// archives.
type StagingArea interface {
	// Stage moves file into the bucket named key under root, creating the
	// bucket directory when needed. If the bucket already holds a file with
	// the same name, the staged copy is renamed so nothing is overwritten.
	// Returns the name the file was staged under, or ErrBucketBlocked when a
	// non-directory sits at the bucket's path.
	Stage(root *Path, file *Path, key string) (string, error)

	// Buckets returns every bucket-shaped directory under root, including
	// ones left behind by an interrupted run, ordered by key.
	Buckets(root *Path) ([]*Bucket, error)

	// Contents returns the files in a bucket as archive entries, ordered by
	// name. Files in nested directories use slash-separated relative names.
	Contents(bucket *Bucket) ([]ArchiveEntry, error)

	// Discard deletes a bucket directory and everything in it.
	Discard(bucket *Bucket) error
}

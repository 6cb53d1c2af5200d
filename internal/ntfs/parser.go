package ntfs

// ParseDescriptor walks one validated MFT record's attributes and builds
// the FileDescriptor the dispatcher needs, applying the effect each
// attribute type has per spec.md §4.2: $STANDARD_INFORMATION contributes
// timestamps when no $FILE_NAME has supplied them yet, $FILE_NAME
// contributes name/parent/size (subject to namespace preference), $DATA
// contributes either resident bytes or a non-resident runlist (a run list
// that fails to decode keeps its decoded prefix and sets d.Err), and
// $INDEX_ROOT contributes child names for directories; $INDEX_ALLOCATION
// is not read, so children held in INDX blocks are not listed.
// includeStreams mirrors Config.Streams (-a): when false, only the
// unnamed $DATA attribute is kept and named (alternate) data streams are
// skipped entirely; when true, the last $DATA attribute encountered wins,
// named or not, and its stream name (empty for the primary stream) is
// recorded on the descriptor.
func ParseDescriptor(rec Record, lba uint64, includeStreams bool) *FileDescriptor {
	d := &FileDescriptor{
		LBA:         lba,
		Record:      rec.RecordNumber(),
		Sequence:    rec.SequenceNumber(),
		InUse:       rec.InUse(),
		IsDirectory: rec.IsDirectory(),
	}

	var haveName bool
	var curNamespace Namespace

	for _, attr := range WalkAttrs(rec) {
		switch attr.Type() {
		case AttrStandardInformation:
			if attr.NonResident() {
				continue
			}
			resident := residentHeader{buf: attr.buf}
			if si, ok := ParseStandardInfoAttr(resident.Value()); ok {
				if d.Created.IsZero() {
					d.Created = si.CreationTime()
				}
				if d.Modified.IsZero() {
					d.Modified = si.ModificationTime()
				}
				if d.Accessed.IsZero() {
					d.Accessed = si.AccessTime()
				}
			}

		case AttrFileName:
			if attr.NonResident() {
				continue
			}
			resident := residentHeader{buf: attr.buf}
			fn, ok := ParseFileNameAttr(resident.Value())
			if !ok {
				continue
			}
			if preferredOver(curNamespace, fn.Namespace(), haveName) {
				d.Name = fn.Name()
				d.Namespace = fn.Namespace()
				d.Parent = fn.ParentReference()
				d.HasName = true
				d.RealSize = fn.RealSize()
				d.AllocatedSize = fn.AllocatedSize()
				if d.Created.IsZero() {
					d.Created = fn.CreationTime()
				}
				if d.Modified.IsZero() {
					d.Modified = fn.ModificationTime()
				}
				if d.Accessed.IsZero() {
					d.Accessed = fn.AccessTime()
				}
				curNamespace = fn.Namespace()
				haveName = true
			}

		case AttrData:
			if attr.HasStreamName() && !includeStreams {
				continue
			}
			if attr.NonResident() {
				non := nonResidentHeader{buf: attr.buf}
				runs, err := DecodeRunlist(non.Runlist())
				d.Runs = runs
				if err != nil {
					d.Err = err
				}
				d.Resident = nil
				d.RealSize = non.RealSize()
				d.AllocatedSize = non.AllocSize()
			} else {
				resident := residentHeader{buf: attr.buf}
				d.Resident = resident.Value()
				d.Runs = nil
				d.RealSize = uint64(resident.ValueLength())
			}
			d.StreamName = attr.StreamName()
			d.Signature = leadingSignature(d)

		case AttrIndexRoot:
			if attr.NonResident() {
				continue
			}
			resident := residentHeader{buf: attr.buf}
			if root, ok := ParseIndexRootAttr(resident.Value()); ok {
				if entries, err := root.Entries(); err == nil {
					for _, e := range entries {
						if !e.Last && e.Name != "" {
							d.Children = append(d.Children, e.Name)
						}
					}
				}
			}
		}
	}

	return d
}

func leadingSignature(d *FileDescriptor) uint64 {
	if len(d.Resident) == 0 {
		return 0
	}
	magic, _ := packMagic(d.Resident)
	return magic
}

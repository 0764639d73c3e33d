package fat32

import (
	"strings"

	"github.com/embeddedgo/fat32/checkpoint"
)

// resolvedEntry is what dirSearch returns on a hit: enough to seed a new
// DirHandle or FileHandle cursor at the found entry's own cluster chain.
type resolvedEntry struct {
	cluster uint32
	size    uint32
	isDir   bool

	// header and displayName are populated on a dirSearch hit so callers
	// (Stat, the afero adapter) can build a full Info without a second
	// directory scan. They are the zero value for a bare root reference.
	header      entryHeader
	displayName string
}

// dirSearch scans the directory chain starting at dirCluster for an entry
// named name, reconstructing and validating any LFN chain that precedes a
// candidate SFN. A checksum mismatch during search is forgiving: the
// entry simply doesn't match, and scanning continues.
func dirSearch(vol *Volume, dirCluster uint32, name string) (resolvedEntry, error) {
	c := &cursor{vol: vol, cluster: dirCluster, sector: vol.clusterToSector(dirCluster)}
	queryName := []byte(name)

	var lfnCRC byte
	lfnMatch := true

	for {
		if err := vol.cache.ensure(c.sector); err != nil {
			return resolvedEntry{}, checkpoint.Wrap(err, ErrPathError)
		}
		raw := vol.cache.buffer[c.offset : c.offset+32]

		switch classifyEntry(raw) {
		case entryKindFree:
			return resolvedEntry{}, checkpoint.From(ErrPathError)

		case entryKindDeleted:
			lfnCRC = 0
			lfnMatch = true

		case entryKindLFN:
			frag := decodeLFNFragment(raw)
			if !lfnFragmentMatches(frag, queryName) {
				lfnMatch = false
			}
			lfnCRC = frag.checksum

		case entryKindSFN:
			hit := false
			viaLFN := lfnCRC != 0
			if viaLFN {
				if lfnMatch && lfnCRC == lfnChecksum(raw[0:11]) {
					hit = true
				}
			} else if sfnCompare([11]byte(raw[0:11]), queryName) {
				hit = true
			}
			lfnCRC = 0
			lfnMatch = true

			if hit {
				h := decodeEntryHeader(raw)
				name := sfnDisplayName(h.Name)
				if viaLFN {
					// The matched LFN chain compared byte-exact against
					// the query, so the query itself is the true name.
					name = string(queryName)
				}
				return resolvedEntry{
					cluster:     h.firstCluster(),
					size:        h.FileSize,
					isDir:       h.Attribute&attrDir != 0,
					header:      h,
					displayName: name,
				}, nil
			}
		}

		if err := c.advanceDirEntry(); err != nil {
			return resolvedEntry{}, checkpoint.From(ErrPathError)
		}
	}
}

// resolvePath walks a "C:/a/b/c" path one fragment at a time. The
// traversal cursor seeds from the volume's root cluster directly (from
// the BPB), not from sectorToCluster(rootLBA).
//
// A fragment containing '.' is resolved like any other via dirSearch and
// then terminates traversal immediately: it names a file, and nothing can
// meaningfully follow it.
func resolvePath(path string) (*Volume, resolvedEntry, error) {
	if len(path) < 3 {
		return nil, resolvedEntry{}, checkpoint.From(ErrPathError)
	}

	vol, err := VolumeByLetter(path[0])
	if err != nil {
		return nil, resolvedEntry{}, err
	}
	if path[1] != ':' || path[2] != '/' {
		return nil, resolvedEntry{}, checkpoint.From(ErrPathError)
	}

	cur := resolvedEntry{cluster: vol.rootCluster, isDir: true}

	rest := path[3:]
	if rest == "" {
		return vol, cur, nil
	}

	for _, fragment := range strings.Split(rest, "/") {
		if fragment == "" {
			continue
		}

		found, err := dirSearch(vol, cur.cluster, fragment)
		if err != nil {
			return nil, resolvedEntry{}, err
		}
		cur = found

		if strings.Contains(fragment, ".") {
			break
		}
	}

	return vol, cur, nil
}

// infoForResolved builds a public Info for a resolvedEntry, falling back to
// the last path fragment for a bare root reference (whose header is the
// zero value, since dirSearch never runs for it).
func infoForResolved(entry resolvedEntry, path string) Info {
	name := entry.displayName
	if name == "" {
		name = baseName(path)
	}
	if entry.header == (entryHeader{}) {
		return Info{Name: name, IsDir: entry.isDir}
	}
	return infoFromHeader(entry.header, name)
}

func baseName(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 || i == len(path)-1 {
		return "/"
	}
	return path[i+1:]
}

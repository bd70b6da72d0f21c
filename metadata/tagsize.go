package metadata

import (
	"bytes"
	"io"
)

const (
	id3v2HeaderSize = 10
	id3v1Size       = 128
)

// audioBytes returns how many bytes of the stream are audio, leaving out an
// ID3v2 tag at the start and an ID3v1 tag at the end. Cover art embedded in
// the tag would otherwise inflate the bitrate.
func audioBytes(rs io.ReadSeeker) (int64, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	n := size

	header := make([]byte, id3v2HeaderSize)
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(rs, header); err == nil && bytes.HasPrefix(header, []byte("ID3")) {
		// the tag size is a 28 bit syncsafe integer and excludes the header
		tagSize := int64(header[6]&0x7f)<<21 | int64(header[7]&0x7f)<<14 |
			int64(header[8]&0x7f)<<7 | int64(header[9]&0x7f)
		tagSize += id3v2HeaderSize
		if header[5]&0x10 != 0 {
			tagSize += id3v2HeaderSize // footer
		}
		n -= tagSize
	}

	if size >= id3v1Size {
		marker := make([]byte, 3)
		if _, err := rs.Seek(size-id3v1Size, io.SeekStart); err != nil {
			return 0, err
		}
		if _, err := io.ReadFull(rs, marker); err == nil && string(marker) == "TAG" {
			n -= id3v1Size
		}
	}

	return max(n, 0), nil
}

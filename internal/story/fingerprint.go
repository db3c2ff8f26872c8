package story

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainStory is the domain prefix for story fingerprints.
const DomainStory = "taleweave/story/v1"

// Fingerprint computes a stable content hash of a story document.
//
// Format: SHA256(domain + 0x00 + fields), where strings are NFC-normalised
// and length-prefixed so that field boundaries cannot be shifted.
// Scripts and styles are included; story metadata other than name and start
// node is not.
func Fingerprint(doc *Document) string {
	h := sha256.New()
	h.Write([]byte(DomainStory))
	h.Write([]byte{0x00})

	writeString := func(s string) {
		b := norm.NFC.Bytes([]byte(s))
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(b)))
		h.Write(n[:])
		h.Write(b)
	}
	writeInt := func(v int) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(int64(v)))
		h.Write(n[:])
	}

	writeString(doc.Name)
	writeInt(doc.StartNode)
	writeInt(len(doc.Entries))
	for _, e := range doc.Entries {
		writeInt(e.ID)
		writeString(e.Name)
		writeString(e.Tags)
		writeString(e.Source)
	}
	writeInt(len(doc.Scripts))
	for _, s := range doc.Scripts {
		writeString(s)
	}
	writeInt(len(doc.Styles))
	for _, s := range doc.Styles {
		writeString(s)
	}

	return hex.EncodeToString(h.Sum(nil))
}

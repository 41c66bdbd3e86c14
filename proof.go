// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// MerkleProof proves that a specific leaf hash is a member of the MMR at a
// specific leaf index under a specific root. It only ever verifies against
// the root that existed when it was constructed.
type MerkleProof struct {
	// MmrSize is the node count of the MMR the proof was built against.
	MmrSize uint64
	// Path holds the sibling hashes from the leaf up to its mountain peak.
	Path [][]byte
	// Peaks holds every peak of the MMR except the one covering the leaf,
	// in ascending position order.
	Peaks [][]byte
}

// ForLeafNode builds a proof for the given leaf index. This is usually the
// constructor you want, since callers know leaf indices more often than flat
// node positions.
func ForLeafNode(mmr *MerkleMountainRange, leafIndex uint64) (*MerkleProof, error) {
	return ForNode(mmr, NodeIndex(leafIndex))
}

// ForNode builds a proof for the node at the given flat position, which must
// be a leaf. The proof has two parts: the sibling path up to the leaf's
// mountain peak, and the remaining peaks of the MMR. The root is then
// recomputable by bagging the recovered peak together with the others.
func ForNode(mmr *MerkleMountainRange, pos uint64) (*MerkleProof, error) {
	if !IsLeaf(pos) {
		return nil, errors.Wrapf(ErrNonLeafNode, "position %d has height %d", pos, Height(pos))
	}
	hash, err := mmr.GetNodeHash(pos)
	if err != nil {
		return nil, err
	}
	if hash == nil {
		return nil, errors.Wrapf(ErrHashNotFound, "position %d", pos)
	}

	size := mmr.Len()
	branch := FamilyBranch(pos, size)

	path := make([][]byte, 0, len(branch))
	for _, step := range branch {
		sibling, err := mmr.GetNodeHash(step[1])
		if err != nil {
			return nil, err
		}
		if sibling == nil {
			return nil, errors.Wrapf(ErrHashNotFound, "position %d", step[1])
		}
		path = append(path, sibling)
	}

	localPeak := pos
	if len(branch) > 0 {
		localPeak = branch[len(branch)-1][0]
	}

	var peaks [][]byte
	for _, peakPos := range FindPeaks(size) {
		if peakPos == localPeak {
			continue
		}
		peak, err := mmr.GetNodeHash(peakPos)
		if err != nil {
			return nil, err
		}
		if peak == nil {
			return nil, errors.Wrapf(ErrHashNotFound, "peak position %d", peakPos)
		}
		peaks = append(peaks, peak)
	}

	return &MerkleProof{
		MmrSize: size,
		Path:    path,
		Peaks:   peaks,
	}, nil
}

// VerifyLeaf checks the proof for leafHash at leafIndex against root.
//
// The sibling path is consumed leaf to peak: at each step the lower position
// hashes first, H(sibling || current) when the sibling sits to the left and
// H(current || sibling) otherwise. The recovered mountain peak is slotted
// into the peak list at the position derived from MmrSize and the whole set
// is bagged right to left, exactly as GetMerkleRoot does.
func (p *MerkleProof) VerifyLeaf(hasher *Hasher, root, leafHash []byte, leafIndex uint64) error {
	peakPositions := FindPeaks(p.MmrSize)
	if peakPositions == nil {
		return errors.Wrapf(ErrInvalidMmrSize, "size %d", p.MmrSize)
	}
	if len(p.Peaks) != len(peakPositions)-1 {
		return errors.Wrapf(ErrInvalidMmrSize, "%d peaks supplied, size %d implies %d",
			len(p.Peaks), p.MmrSize, len(peakPositions)-1)
	}

	pos := NodeIndex(leafIndex)
	current := leafHash
	for _, sibling := range p.Path {
		parentPos, siblingPos := Family(pos)
		if parentPos >= p.MmrSize {
			return errors.Wrapf(ErrInvalidMmrSize, "path overruns mmr of size %d", p.MmrSize)
		}
		if siblingPos < pos {
			current = hasher.Hash(sibling, current)
		} else {
			current = hasher.Hash(current, sibling)
		}
		pos = parentPos
	}

	// current must now be the peak covering the leaf
	slot := -1
	for i, peakPos := range peakPositions {
		if peakPos == pos {
			slot = i
			break
		}
	}
	if slot < 0 {
		return errors.Wrapf(ErrInvalidMmrSize, "path ends at %d which is not a peak of size %d", pos, p.MmrSize)
	}

	all := make([][]byte, 0, len(peakPositions))
	j := 0
	for i := range peakPositions {
		if i == slot {
			all = append(all, current)
			continue
		}
		all = append(all, p.Peaks[j])
		j++
	}

	if !bytes.Equal(bagPeaks(hasher, all), root) {
		return ErrRootMismatch
	}
	return nil
}

// Bytes encodes the proof for the wire. The encoding round-trips exactly
// through DecodeMerkleProof.
func (p *MerkleProof) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(p)
}

// DecodeMerkleProof decodes a proof produced by Bytes.
func DecodeMerkleProof(buf []byte) (*MerkleProof, error) {
	proof := &MerkleProof{}
	if err := rlp.DecodeBytes(buf, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

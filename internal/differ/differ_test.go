package differ

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

type DifferTestSuite struct {
	suite.Suite
}

func TestDifferTestSuite(t *testing.T) {
	suite.Run(t, new(DifferTestSuite))
}

func (s *DifferTestSuite) TestDiff_Insert() {
	patch, ok := Diff("hello", "helllo")
	s.Require().True(ok)

	s.Equal(models.PatchKindInsert, patch.Kind)
	s.Equal(4, patch.Position)
	s.Equal("l", patch.Payload)
}

func (s *DifferTestSuite) TestDiff_Delete() {
	patch, ok := Diff("hello", "helo")
	s.Require().True(ok)

	s.Equal(models.PatchKindDelete, patch.Kind)
	s.Equal(3, patch.Position)
	s.Equal("l", patch.Payload)
}

func (s *DifferTestSuite) TestDiff_Replace() {
	patch, ok := Diff("hello", "heXXo")
	s.Require().True(ok)

	s.Equal(models.PatchKindReplace, patch.Kind)
	s.Equal(2, patch.Position)
	s.Equal("XX", patch.Payload)
}

func (s *DifferTestSuite) TestDiff_Identical() {
	patch, ok := Diff("same", "same")
	s.False(ok)
	s.Nil(patch)
}

func (s *DifferTestSuite) TestDiff_RoundTrip() {
	cases := []struct {
		name    string
		oldText string
		newText string
	}{
		{"insert at start", "world", "hello world"},
		{"insert at end", "hello", "hello!"},
		{"insert in middle", "func main()", "func main() {}"},
		{"delete at start", "xhello", "hello"},
		{"delete at end", "hello\n", "hello"},
		{"delete everything", "gone", ""},
		{"insert into empty", "", "fresh"},
		{"replace in middle", "abcdef", "abXYef"},
		{"replace single rune", "cat", "car"},
		{"multibyte insert", "héllo", "héllло"},
		{"multibyte delete", "日本語テスト", "日本テスト"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			patch, ok := Diff(tc.oldText, tc.newText)
			s.Require().True(ok)

			applied, err := Apply(tc.oldText, patch)
			s.Require().NoError(err)
			s.Equal(tc.newText, applied)
		})
	}
}

// Two disjoint edits between snapshots are outside the differ's
// contract: the single-region patch cannot reconstruct the target.
func (s *DifferTestSuite) TestDiff_TwoDisjointEditsAreNotCaptured() {
	oldText := "aaa bbb ccc"
	newText := "aXa bbb cXc"

	patch, ok := Diff(oldText, newText)
	s.Require().True(ok)

	applied, err := Apply(oldText, patch)
	s.Require().NoError(err)
	s.NotEqual(newText, applied)
}

func (s *DifferTestSuite) TestApply_OutOfBounds() {
	_, err := Apply("short", &models.Patch{
		Kind:     models.PatchKindInsert,
		Position: 10,
		Payload:  "x",
	})
	s.ErrorIs(err, ErrInvalidPatch)

	_, err = Apply("short", &models.Patch{
		Kind:     models.PatchKindInsert,
		Position: -1,
		Payload:  "x",
	})
	s.ErrorIs(err, ErrInvalidPatch)

	_, err = Apply("short", &models.Patch{
		Kind:     models.PatchKindDelete,
		Position: 3,
		Payload:  "orttt",
	})
	s.ErrorIs(err, ErrInvalidPatch)
}

func (s *DifferTestSuite) TestApply_ReplaceClipsAtEnd() {
	applied, err := Apply("abc", &models.Patch{
		Kind:     models.PatchKindReplace,
		Position: 2,
		Payload:  "XYZ",
	})
	s.Require().NoError(err)
	s.Equal("abXYZ", applied)
}

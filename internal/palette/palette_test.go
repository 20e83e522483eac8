package palette

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type PaletteTestSuite struct {
	suite.Suite
}

func TestPaletteTestSuite(t *testing.T) {
	suite.Run(t, new(PaletteTestSuite))
}

func (s *PaletteTestSuite) TestPick_FirstFree() {
	s.Equal(0, Pick(nil))
	s.Equal(1, Pick([]int{0}))
	s.Equal(0, Pick([]int{1, 2, 3}))
	s.Equal(2, Pick([]int{0, 1, 3, 4}))
}

func (s *PaletteTestSuite) TestPick_WrapsWhenExhausted() {
	inUse := make([]int, 0, Size)
	for i := 0; i < Size; i++ {
		inUse = append(inUse, i)
	}

	s.Equal(0, Pick(inUse))
	s.Equal(1, Pick(append(inUse, 0)))
}

func (s *PaletteTestSuite) TestPick_Deterministic() {
	inUse := []int{3, 7, 0}
	first := Pick(inUse)
	for i := 0; i < 10; i++ {
		s.Equal(first, Pick(inUse))
	}
}

func (s *PaletteTestSuite) TestColor_WrapsIndex() {
	s.Equal(Color(0), Color(Size))
	s.NotEmpty(Color(5))
	s.Equal(Color(0), Color(-1))
}

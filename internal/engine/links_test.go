package engine

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type LinksTestSuite struct {
	suite.Suite
}

func TestLinksTestSuite(t *testing.T) {
	suite.Run(t, new(LinksTestSuite))
}

func (s *LinksTestSuite) TestShareLink() {
	link, err := ShareLink("https://example.com/battle", "session-42")
	s.Require().NoError(err)
	s.Equal("https://example.com/battle?session=session-42", link)
}

func (s *LinksTestSuite) TestShareLink_PreservesExistingQuery() {
	link, err := ShareLink("https://example.com/battle?lang=go", "session-42")
	s.Require().NoError(err)

	sessionID, ok := SessionFromLink(link)
	s.Require().True(ok)
	s.Equal("session-42", sessionID)
	s.Contains(link, "lang=go")
}

func (s *LinksTestSuite) TestShareLink_EmptySessionID() {
	_, err := ShareLink("https://example.com", "")
	s.Error(err)
}

func (s *LinksTestSuite) TestSessionFromLink_Missing() {
	_, ok := SessionFromLink("https://example.com/battle")
	s.False(ok)
}

func (s *LinksTestSuite) TestSessionFromLink_RoundTrip() {
	link, err := ShareLink("http://localhost:8080", "a b/c")
	s.Require().NoError(err)

	sessionID, ok := SessionFromLink(link)
	s.Require().True(ok)
	s.Equal("a b/c", sessionID)
}

package account

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jvre/memberd/database/mock"
)

var errTransport = errors.New("smtp transport failure")

const testServerURL = "http://localhost:3010"

// RegistrationSuite is a test suite for the registration workflow.
type RegistrationSuite struct {
	suite.Suite
	db     *mock.MockDB
	mailer *mockMailer
	svc    *Service
}

// SetupSuite runs once before all tests in the suite. The printer is built
// without the locale catalog; English output falls back to the message keys,
// which are the English texts.
func (s *RegistrationSuite) SetupSuite() {
	s.db = mock.NewMockDB()
	s.mailer = &mockMailer{}
	s.svc = New(s.db, s.mailer, &mockTemplates{}, message.NewPrinter(language.English), testServerURL)
}

// SetupTest resets the collaborators before each test.
func (s *RegistrationSuite) SetupTest() {
	s.db.Reset()
	s.mailer.Reset()
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

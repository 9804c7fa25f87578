package league

import "sync"

var _ LeagueStore = (*MockStore)(nil)

// MockStore is a mock implementation of the LeagueStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc                  func(name, phone string) (Player, error)
	GetOrCreatePlayerFunc          func(name, phone string) (Player, error)
	GetPlayerByNameFunc            func(name string) (*Player, error)
	GetPlayerFunc                  func(playerID string) (*Player, error)
	ListPlayersFunc                func() ([]Player, error)
	CreateGameFunc                 func(gameType string) (Game, error)
	GetGameFunc                    func(gameID string) (*Game, error)
	ListGamesFunc                  func() ([]Game, error)
	SaveFinalizationFunc           func(result FinalizedGame) error
	ApplySettlementFunc            func(gameID, winner string) (bool, error)
	ListParticipantsFunc           func(gameID string) ([]ParticipantDetail, error)
	ListTeamParticipantsFunc       func(gameID, team string) ([]ParticipantDetail, error)
	CreateConfirmationsFunc        func(gameID string, playerIDs []string, now int64) ([]LossConfirmation, error)
	GetConfirmationFunc            func(id string) (*LossConfirmation, error)
	RecordConfirmationResponseFunc func(id string, confirmedLoss bool, now int64) (bool, error)
	ForceConfirmFunc               func(id string, now int64) (bool, error)
	ListConfirmationsFunc          func(gameID string) ([]LossConfirmation, error)
	ListPendingOlderThanFunc       func(cutoff int64) ([]LossConfirmation, error)
	LeaderboardFunc                func() (*Leaderboard, error)

	// Call records
	GetOrCreatePlayerCalls []struct {
		Name  string
		Phone string
	}
	SaveFinalizationCalls []FinalizedGame
	ApplySettlementCalls  []struct {
		GameID string
		Winner string
	}
	CreateConfirmationsCalls []struct {
		GameID    string
		PlayerIDs []string
		Now       int64
	}
	RecordConfirmationResponseCalls []struct {
		ID            string
		ConfirmedLoss bool
		Now           int64
	}
	ForceConfirmCalls []struct {
		ID  string
		Now int64
	}
	ClearCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) AddPlayer(name, phone string) (Player, error) {
	if m.AddPlayerFunc != nil {
		return m.AddPlayerFunc(name, phone)
	}
	return Player{}, nil
}

func (m *MockStore) GetOrCreatePlayer(name, phone string) (Player, error) {
	m.mu.Lock()
	m.GetOrCreatePlayerCalls = append(m.GetOrCreatePlayerCalls, struct {
		Name  string
		Phone string
	}{name, phone})
	m.mu.Unlock()
	if m.GetOrCreatePlayerFunc != nil {
		return m.GetOrCreatePlayerFunc(name, phone)
	}
	return Player{}, nil
}

func (m *MockStore) GetPlayerByName(name string) (*Player, error) {
	if m.GetPlayerByNameFunc != nil {
		return m.GetPlayerByNameFunc(name)
	}
	return nil, ErrPlayerNotFound
}

func (m *MockStore) GetPlayer(playerID string) (*Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(playerID)
	}
	return nil, ErrPlayerNotFound
}

func (m *MockStore) ListPlayers() ([]Player, error) {
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) CreateGame(gameType string) (Game, error) {
	if m.CreateGameFunc != nil {
		return m.CreateGameFunc(gameType)
	}
	return Game{}, nil
}

func (m *MockStore) GetGame(gameID string) (*Game, error) {
	if m.GetGameFunc != nil {
		return m.GetGameFunc(gameID)
	}
	return nil, ErrGameNotFound
}

func (m *MockStore) ListGames() ([]Game, error) {
	if m.ListGamesFunc != nil {
		return m.ListGamesFunc()
	}
	return nil, nil
}

func (m *MockStore) SaveFinalization(result FinalizedGame) error {
	m.mu.Lock()
	m.SaveFinalizationCalls = append(m.SaveFinalizationCalls, result)
	m.mu.Unlock()
	if m.SaveFinalizationFunc != nil {
		return m.SaveFinalizationFunc(result)
	}
	return nil
}

func (m *MockStore) ApplySettlement(gameID, winner string) (bool, error) {
	m.mu.Lock()
	m.ApplySettlementCalls = append(m.ApplySettlementCalls, struct {
		GameID string
		Winner string
	}{gameID, winner})
	m.mu.Unlock()
	if m.ApplySettlementFunc != nil {
		return m.ApplySettlementFunc(gameID, winner)
	}
	return true, nil
}

func (m *MockStore) ListParticipants(gameID string) ([]ParticipantDetail, error) {
	if m.ListParticipantsFunc != nil {
		return m.ListParticipantsFunc(gameID)
	}
	return nil, nil
}

func (m *MockStore) ListTeamParticipants(gameID, team string) ([]ParticipantDetail, error) {
	if m.ListTeamParticipantsFunc != nil {
		return m.ListTeamParticipantsFunc(gameID, team)
	}
	return nil, nil
}

func (m *MockStore) CreateConfirmations(gameID string, playerIDs []string, now int64) ([]LossConfirmation, error) {
	m.mu.Lock()
	m.CreateConfirmationsCalls = append(m.CreateConfirmationsCalls, struct {
		GameID    string
		PlayerIDs []string
		Now       int64
	}{gameID, playerIDs, now})
	m.mu.Unlock()
	if m.CreateConfirmationsFunc != nil {
		return m.CreateConfirmationsFunc(gameID, playerIDs, now)
	}
	return nil, nil
}

func (m *MockStore) GetConfirmation(id string) (*LossConfirmation, error) {
	if m.GetConfirmationFunc != nil {
		return m.GetConfirmationFunc(id)
	}
	return nil, ErrConfirmationNotFound
}

func (m *MockStore) RecordConfirmationResponse(id string, confirmedLoss bool, now int64) (bool, error) {
	m.mu.Lock()
	m.RecordConfirmationResponseCalls = append(m.RecordConfirmationResponseCalls, struct {
		ID            string
		ConfirmedLoss bool
		Now           int64
	}{id, confirmedLoss, now})
	m.mu.Unlock()
	if m.RecordConfirmationResponseFunc != nil {
		return m.RecordConfirmationResponseFunc(id, confirmedLoss, now)
	}
	return true, nil
}

func (m *MockStore) ForceConfirm(id string, now int64) (bool, error) {
	m.mu.Lock()
	m.ForceConfirmCalls = append(m.ForceConfirmCalls, struct {
		ID  string
		Now int64
	}{id, now})
	m.mu.Unlock()
	if m.ForceConfirmFunc != nil {
		return m.ForceConfirmFunc(id, now)
	}
	return true, nil
}

func (m *MockStore) ListConfirmations(gameID string) ([]LossConfirmation, error) {
	if m.ListConfirmationsFunc != nil {
		return m.ListConfirmationsFunc(gameID)
	}
	return nil, nil
}

func (m *MockStore) ListPendingOlderThan(cutoff int64) ([]LossConfirmation, error) {
	if m.ListPendingOlderThanFunc != nil {
		return m.ListPendingOlderThanFunc(cutoff)
	}
	return nil, nil
}

func (m *MockStore) Leaderboard() (*Leaderboard, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc()
	}
	return &Leaderboard{}, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	m.ClearCalls++
	m.mu.Unlock()
}

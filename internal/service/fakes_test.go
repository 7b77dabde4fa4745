package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]domain.Token
}

func newFakeTokens(tokens ...domain.Token) *fakeTokens {
	f := &fakeTokens{tokens: map[string]domain.Token{}}
	for _, t := range tokens {
		f.tokens[t.TokenNo] = t
	}
	return f
}

func (f *fakeTokens) last() string {
	keys := make([]string, 0, len(f.tokens))
	for k := range f.tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[len(keys)-1]
}

func (f *fakeTokens) Create(_ context.Context, token domain.Token, next func(last string) (string, error)) (domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tokenNo, err := next(f.last())
	if err != nil {
		return domain.Token{}, err
	}
	token.TokenNo = tokenNo
	f.tokens[tokenNo] = token
	return token, nil
}

func (f *fakeTokens) PeekNext(_ context.Context, next func(last string) (string, error)) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return next(f.last())
}

func (f *fakeTokens) FindByTokenNo(_ context.Context, tokenNo string) (domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenNo]
	if !ok {
		return domain.Token{}, repository.ErrTokenNotFound
	}
	return t, nil
}

func (f *fakeTokens) Find(_ context.Context, filter domain.TokenFilter) ([]domain.Token, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Token
	for _, t := range f.tokens {
		if filter.Code != "" && t.Code != filter.Code {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenNo < out[j].TokenNo })
	return out, int64(len(out)), nil
}

func (f *fakeTokens) FindBoard(context.Context, time.Time, time.Time) ([]domain.BoardItem, error) {
	return nil, nil
}

func (f *fakeTokens) Update(_ context.Context, token domain.Token) (domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token.TokenNo]; !ok {
		return domain.Token{}, repository.ErrTokenNotFound
	}
	f.tokens[token.TokenNo] = token
	return token, nil
}

func (f *fakeTokens) SetPaid(_ context.Context, tokenNo string, paid bool) (domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenNo]
	if !ok {
		return domain.Token{}, repository.ErrTokenNotFound
	}
	t.IsPaid = paid
	f.tokens[tokenNo] = t
	return t, nil
}

func (f *fakeTokens) Delete(_ context.Context, tokenNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[tokenNo]; !ok {
		return repository.ErrTokenNotFound
	}
	delete(f.tokens, tokenNo)
	return nil
}

type recordedEvents struct {
	events []domain.TokenEvent
}

func (r *recordedEvents) Publish(e domain.TokenEvent) {
	r.events = append(r.events, e)
}

type countingRecorder struct {
	tokens   map[domain.TestType]int
	expenses map[domain.PayMode]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{tokens: map[domain.TestType]int{}, expenses: map[domain.PayMode]int{}}
}

func (r *countingRecorder) TokenIssued(test domain.TestType) { r.tokens[test]++ }
func (r *countingRecorder) ExpenseRecorded(mode domain.PayMode) { r.expenses[mode]++ }

type fakeSkinTests map[string]domain.SkinTest

func (f fakeSkinTests) Create(_ context.Context, test domain.SkinTest) (domain.SkinTest, error) {
	if _, ok := f[test.TokenNo]; ok {
		return domain.SkinTest{}, repository.ErrSkinTestExists
	}
	f[test.TokenNo] = test
	return test, nil
}

func (f fakeSkinTests) FindByTokenNo(_ context.Context, tokenNo string) (domain.SkinTest, error) {
	t, ok := f[tokenNo]
	if !ok {
		return domain.SkinTest{}, repository.ErrSkinTestNotFound
	}
	return t, nil
}

func (f fakeSkinTests) Find(context.Context, domain.SkinTestFilter) ([]domain.SkinTest, int64, error) {
	out := make([]domain.SkinTest, 0, len(f))
	for _, t := range f {
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (f fakeSkinTests) Update(_ context.Context, test domain.SkinTest) (domain.SkinTest, error) {
	if _, ok := f[test.TokenNo]; !ok {
		return domain.SkinTest{}, repository.ErrSkinTestNotFound
	}
	f[test.TokenNo] = test
	return test, nil
}

func (f fakeSkinTests) Delete(_ context.Context, tokenNo string) error {
	if _, ok := f[tokenNo]; !ok {
		return repository.ErrSkinTestNotFound
	}
	delete(f, tokenNo)
	return nil
}

type fakeExchanges map[string]domain.PureExchange

func (f fakeExchanges) Create(_ context.Context, ex domain.PureExchange) (domain.PureExchange, error) {
	if _, ok := f[ex.TokenNo]; ok {
		return domain.PureExchange{}, repository.ErrExchangeExists
	}
	f[ex.TokenNo] = ex
	return ex, nil
}

func (f fakeExchanges) FindByTokenNo(_ context.Context, tokenNo string) (domain.PureExchange, error) {
	ex, ok := f[tokenNo]
	if !ok {
		return domain.PureExchange{}, repository.ErrExchangeNotFound
	}
	return ex, nil
}

func (f fakeExchanges) Find(context.Context, domain.ExchangeFilter) ([]domain.PureExchange, int64, error) {
	out := make([]domain.PureExchange, 0, len(f))
	for _, ex := range f {
		out = append(out, ex)
	}
	return out, int64(len(out)), nil
}

func (f fakeExchanges) Update(_ context.Context, ex domain.PureExchange) (domain.PureExchange, error) {
	if _, ok := f[ex.TokenNo]; !ok {
		return domain.PureExchange{}, repository.ErrExchangeNotFound
	}
	f[ex.TokenNo] = ex
	return ex, nil
}

func (f fakeExchanges) Delete(_ context.Context, tokenNo string) error {
	if _, ok := f[tokenNo]; !ok {
		return repository.ErrExchangeNotFound
	}
	delete(f, tokenNo)
	return nil
}

type fakeUsers struct {
	users  map[uint]domain.User
	nextID uint
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uint]domain.User{}, nextID: 1}
}

func (f *fakeUsers) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username {
			return domain.User{}, repository.ErrUsernameExists
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindAll(context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Count(context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

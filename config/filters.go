package config

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
)

// Filters defines which fetched emails the monitor should skip without
// notifying. Useful when the Gmail query is broader than Jules alone.
type Filters struct {
	IgnoreSenders           []string `json:"ignoreSenders"`
	IgnoreKeywordsInSubject []string `json:"ignoreKeywordsInSubject"`
}

// Manager handles loading, saving, and querying filter rules.
type Manager struct {
	filePath string
	filters  *Filters
	mu       sync.RWMutex
}

// NewManager creates a manager backed by the given JSON file. A missing
// file is created with empty rules.
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{
		filePath: filePath,
		filters:  &Filters{},
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.filters = &Filters{
				IgnoreSenders:           []string{},
				IgnoreKeywordsInSubject: []string{},
			}
			return m.save()
		}
		return err
	}

	var filters Filters
	if err := json.Unmarshal(data, &filters); err != nil {
		return err
	}
	m.filters = &filters
	return nil
}

// save writes the current rules; callers must hold m.mu.
func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.filters, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filePath, data, 0644)
}

// ShouldIgnore reports whether an email from the given sender with the
// given subject matches any ignore rule. Matching is case-insensitive
// substring containment.
func (m *Manager) ShouldIgnore(from, subject string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lowerFrom := strings.ToLower(from)
	for _, sender := range m.filters.IgnoreSenders {
		if strings.Contains(lowerFrom, strings.ToLower(sender)) {
			return true
		}
	}
	lowerSubject := strings.ToLower(subject)
	for _, keyword := range m.filters.IgnoreKeywordsInSubject {
		if strings.Contains(lowerSubject, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// AddIgnoreSender adds a sender rule and saves, skipping duplicates.
func (m *Manager) AddIgnoreSender(sender string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.filters.IgnoreSenders {
		if s == sender {
			return nil
		}
	}
	m.filters.IgnoreSenders = append(m.filters.IgnoreSenders, sender)
	return m.save()
}

// AddIgnoreKeywordInSubject adds a subject keyword rule and saves,
// skipping duplicates.
func (m *Manager) AddIgnoreKeywordInSubject(keyword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.filters.IgnoreKeywordsInSubject {
		if k == keyword {
			return nil
		}
	}
	m.filters.IgnoreKeywordsInSubject = append(m.filters.IgnoreKeywordsInSubject, keyword)
	return m.save()
}

package state

import (
	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/config"
	"github.com/calehh/capsule-app/tx"
	"github.com/calehh/capsule-app/types"
)

// RegisterAgent creates the agent record of (owner, agent id). The owner
// pays the record's reservation.
func (s *State) RegisterAgent(t *tx.RegisterAgentTx, owner addr.Address, checkOnly bool) (event *types.EventAgentRegistered, err error) {
	s.logger.Debug("apply register agent", "owner", owner, "agentId", t.AgentId, "height", s.header.Height)
	err = validateText(
		textField{"agent_id", t.AgentId, config.MaxAgentIDLen},
		textField{"name", t.Name, config.MaxNameLen},
		textField{"display_name", t.DisplayName, config.MaxDisplayNameLen},
		textField{"platform", t.Platform, config.MaxPlatformLen},
	)
	if err != nil {
		return nil, err
	}
	a, bump, err := derive(addr.KindAgent, owner.Bytes(), []byte(t.AgentId))
	if err != nil {
		return nil, err
	}
	exists, err := s.has(recordKey(addr.KindAgent, a))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}
	plan := s.newTransferPlan()
	if err = plan.move(owner, a, s.Reservation(AgentSize)); err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	agent := &Agent{
		Owner:       owner,
		AgentId:     t.AgentId,
		Name:        t.Name,
		DisplayName: t.DisplayName,
		Platform:    t.Platform,
		CreatedAt:   s.now(),
		UsageCount:  0,
		Reputation:  config.InitialReputation,
		Bump:        bump,
	}
	s.createRecord(a, agent)
	plan.commit()

	event = &types.EventAgentRegistered{
		Agent:   a,
		Owner:   owner,
		AgentId: agent.AgentId,
		Name:    agent.Name,
	}
	return
}

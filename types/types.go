package types

import (
	"fmt"
	"strconv"

	"github.com/calehh/capsule-app/addr"
	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventAgentRegisteredType     = "agent_registered"
	EventCapsuleCreatedType      = "capsule_created"
	EventCapsulePriceUpdatedType = "capsule_price_updated"
	EventCapsuleStakedType       = "capsule_staked"
	EventPoolInitializedType     = "pool_initialized"
	EventPoolStakedType          = "pool_staked"
	EventPoolUnstakedType        = "pool_unstaked"
	EventQueryPaidType           = "query_paid"
	EventEarningsWithdrawnType   = "earnings_withdrawn"
	EventTransferType            = "transfer"
)

type EventAgentRegistered struct {
	Agent   addr.Address `json:"agent"`
	Owner   addr.Address `json:"owner"`
	AgentId string       `json:"agentId"`
	Name    string       `json:"name"`
}

func EncodeEventAgentRegistered(event *EventAgentRegistered) abci.Event {
	return abci.Event{
		Type: EventAgentRegisteredType,
		Attributes: []abci.EventAttribute{
			{Key: "agent", Value: event.Agent.String(), Index: true},
			{Key: "owner", Value: event.Owner.String(), Index: true},
			{Key: "agentId", Value: event.AgentId, Index: false},
			{Key: "name", Value: event.Name, Index: false},
		},
	}
}

type EventCapsuleCreated struct {
	Capsule       addr.Address `json:"capsule"`
	Creator       addr.Address `json:"creator"`
	CapsuleId     string       `json:"capsuleId"`
	PricePerQuery uint64       `json:"pricePerQuery"`
}

func EncodeEventCapsuleCreated(event *EventCapsuleCreated) abci.Event {
	return abci.Event{
		Type: EventCapsuleCreatedType,
		Attributes: []abci.EventAttribute{
			{Key: "capsule", Value: event.Capsule.String(), Index: true},
			{Key: "creator", Value: event.Creator.String(), Index: true},
			{Key: "capsuleId", Value: event.CapsuleId, Index: false},
			{Key: "price", Value: fmt.Sprintf("%v", event.PricePerQuery), Index: false},
		},
	}
}

type EventCapsulePriceUpdated struct {
	Capsule  addr.Address `json:"capsule"`
	OldPrice uint64       `json:"oldPrice"`
	NewPrice uint64       `json:"newPrice"`
}

func EncodeEventCapsulePriceUpdated(event *EventCapsulePriceUpdated) abci.Event {
	return abci.Event{
		Type: EventCapsulePriceUpdatedType,
		Attributes: []abci.EventAttribute{
			{Key: "capsule", Value: event.Capsule.String(), Index: true},
			{Key: "oldPrice", Value: fmt.Sprintf("%v", event.OldPrice), Index: false},
			{Key: "newPrice", Value: fmt.Sprintf("%v", event.NewPrice), Index: false},
		},
	}
}

// EventCapsuleStaked moves Amount from the staker to the stake record.
type EventCapsuleStaked struct {
	Capsule     addr.Address `json:"capsule"`
	Stake       addr.Address `json:"stake"`
	Staker      addr.Address `json:"staker"`
	Amount      uint64       `json:"amount"`
	StakeAmount uint64       `json:"stakeAmount"`
	TotalStake  uint64       `json:"totalStake"`
	LockUntil   int64        `json:"lockUntil"`
}

func EncodeEventCapsuleStaked(event *EventCapsuleStaked) abci.Event {
	return abci.Event{
		Type: EventCapsuleStakedType,
		Attributes: []abci.EventAttribute{
			{Key: "capsule", Value: event.Capsule.String(), Index: true},
			{Key: "stake", Value: event.Stake.String(), Index: true},
			{Key: "from", Value: event.Staker.String(), Index: true},
			{Key: "to", Value: event.Stake.String(), Index: false},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "stakeAmount", Value: fmt.Sprintf("%v", event.StakeAmount), Index: false},
			{Key: "totalStake", Value: fmt.Sprintf("%v", event.TotalStake), Index: false},
			{Key: "lockUntil", Value: fmt.Sprintf("%v", event.LockUntil), Index: false},
		},
	}
}

func DecodeEventCapsuleStaked(originEvent abci.Event) *EventCapsuleStaked {
	event := &EventCapsuleStaked{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "capsule":
			err = event.Capsule.UnmarshalText([]byte(v.Value))
		case "stake":
			err = event.Stake.UnmarshalText([]byte(v.Value))
		case "from":
			err = event.Staker.UnmarshalText([]byte(v.Value))
		case "amount":
			event.Amount, err = strconv.ParseUint(v.Value, 10, 64)
		case "stakeAmount":
			event.StakeAmount, err = strconv.ParseUint(v.Value, 10, 64)
		case "totalStake":
			event.TotalStake, err = strconv.ParseUint(v.Value, 10, 64)
		case "lockUntil":
			event.LockUntil, err = strconv.ParseInt(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

type EventPoolInitialized struct {
	Pool      addr.Address `json:"pool"`
	Creator   addr.Address `json:"creator"`
	CapsuleId string       `json:"capsuleId"`
}

func EncodeEventPoolInitialized(event *EventPoolInitialized) abci.Event {
	return abci.Event{
		Type: EventPoolInitializedType,
		Attributes: []abci.EventAttribute{
			{Key: "pool", Value: event.Pool.String(), Index: true},
			{Key: "creator", Value: event.Creator.String(), Index: true},
			{Key: "capsuleId", Value: event.CapsuleId, Index: false},
		},
	}
}

// EventPoolStake is emitted for both pool directions. For a stake value
// moves from User to Pool, for an unstake from Pool to User.
type EventPoolStake struct {
	Pool        addr.Address `json:"pool"`
	UserStake   addr.Address `json:"userStake"`
	User        addr.Address `json:"user"`
	Amount      uint64       `json:"amount"`
	StakeAmount uint64       `json:"stakeAmount"`
	TotalStaked uint64       `json:"totalStaked"`
	Unstake     bool         `json:"unstake"`
}

func EncodeEventPoolStake(event *EventPoolStake) abci.Event {
	typ, from, to := EventPoolStakedType, event.User, event.Pool
	if event.Unstake {
		typ, from, to = EventPoolUnstakedType, event.Pool, event.User
	}
	return abci.Event{
		Type: typ,
		Attributes: []abci.EventAttribute{
			{Key: "pool", Value: event.Pool.String(), Index: true},
			{Key: "userStake", Value: event.UserStake.String(), Index: true},
			{Key: "from", Value: from.String(), Index: true},
			{Key: "to", Value: to.String(), Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "stakeAmount", Value: fmt.Sprintf("%v", event.StakeAmount), Index: false},
			{Key: "totalStaked", Value: fmt.Sprintf("%v", event.TotalStaked), Index: false},
		},
	}
}

func DecodeEventPoolStake(originEvent abci.Event) *EventPoolStake {
	event := &EventPoolStake{Unstake: originEvent.Type == EventPoolUnstakedType}
	var from, to addr.Address
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "pool":
			err = event.Pool.UnmarshalText([]byte(v.Value))
		case "userStake":
			err = event.UserStake.UnmarshalText([]byte(v.Value))
		case "from":
			err = from.UnmarshalText([]byte(v.Value))
		case "to":
			err = to.UnmarshalText([]byte(v.Value))
		case "amount":
			event.Amount, err = strconv.ParseUint(v.Value, 10, 64)
		case "stakeAmount":
			event.StakeAmount, err = strconv.ParseUint(v.Value, 10, 64)
		case "totalStaked":
			event.TotalStaked, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	event.User = from
	if event.Unstake {
		event.User = to
	}
	return event
}

type EventQueryPaid struct {
	Capsule       addr.Address `json:"capsule"`
	Earnings      addr.Address `json:"earnings"`
	Payer         addr.Address `json:"payer"`
	Amount        uint64       `json:"amount"`
	TotalEarnings uint64       `json:"totalEarnings"`
	QueryCount    uint64       `json:"queryCount"`
}

func EncodeEventQueryPaid(event *EventQueryPaid) abci.Event {
	return abci.Event{
		Type: EventQueryPaidType,
		Attributes: []abci.EventAttribute{
			{Key: "capsule", Value: event.Capsule.String(), Index: true},
			{Key: "earnings", Value: event.Earnings.String(), Index: true},
			{Key: "from", Value: event.Payer.String(), Index: true},
			{Key: "to", Value: event.Earnings.String(), Index: false},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "totalEarnings", Value: fmt.Sprintf("%v", event.TotalEarnings), Index: false},
			{Key: "queryCount", Value: fmt.Sprintf("%v", event.QueryCount), Index: false},
		},
	}
}

type EventEarningsWithdrawn struct {
	Earnings    addr.Address `json:"earnings"`
	Destination addr.Address `json:"destination"`
	Amount      uint64       `json:"amount"`
}

func EncodeEventEarningsWithdrawn(event *EventEarningsWithdrawn) abci.Event {
	return abci.Event{
		Type: EventEarningsWithdrawnType,
		Attributes: []abci.EventAttribute{
			{Key: "earnings", Value: event.Earnings.String(), Index: true},
			{Key: "from", Value: event.Earnings.String(), Index: false},
			{Key: "to", Value: event.Destination.String(), Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventEarningsWithdrawn(originEvent abci.Event) *EventEarningsWithdrawn {
	event := &EventEarningsWithdrawn{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "earnings":
			err = event.Earnings.UnmarshalText([]byte(v.Value))
		case "to":
			err = event.Destination.UnmarshalText([]byte(v.Value))
		case "amount":
			event.Amount, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

type EventTransfer struct {
	From   addr.Address `json:"from"`
	To     addr.Address `json:"to"`
	Amount uint64       `json:"amount"`
}

func EncodeEventTransfer(event *EventTransfer) abci.Event {
	return abci.Event{
		Type: EventTransferType,
		Attributes: []abci.EventAttribute{
			{Key: "from", Value: event.From.String(), Index: true},
			{Key: "to", Value: event.To.String(), Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventTransfer(originEvent abci.Event) *EventTransfer {
	event := &EventTransfer{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "from":
			err = event.From.UnmarshalText([]byte(v.Value))
		case "to":
			err = event.To.UnmarshalText([]byte(v.Value))
		case "amount":
			event.Amount, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

// EventAttribute returns the value of key in event.
func EventAttribute(event abci.Event, key string) (string, bool) {
	for _, v := range event.Attributes {
		if v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}

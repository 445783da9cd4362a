package process

import (
	"encoding/json"

	"github.com/autobattle/roomserver/internal/protocol"
	"github.com/autobattle/roomserver/internal/room"
	"github.com/autobattle/roomserver/internal/session"
)

// HandleEnvelope implements session.Dispatcher. It is called from that
// session's own reader goroutine, so every branch that touches a Room
// goes through Room.Submit rather than calling a Room method directly.
func (p *Process) HandleEnvelope(s *session.Session, env protocol.Envelope) {
	switch env.Type {
	case protocol.InSetName:
		p.handleSetName(s, env.Data)
	case protocol.InCreateRoom:
		p.handleCreateRoom(s)
	case protocol.InJoinRoom:
		p.handleJoinRoom(s, env.Data)
	case protocol.InLeaveRoom:
		p.handleLeaveRoom(s)
	case protocol.InListRooms:
		p.handleListRooms(s)
	case protocol.InReady:
		p.handleReady(s, env.Data)
	case protocol.InChat:
		p.handleChat(s, env.Data)
	case protocol.InAction:
		p.handleAction(s, env.Data)
	default:
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: "unknown message type: " + env.Type})
	}
}

// HandleClose implements session.Dispatcher: drop the session from both
// registries and tell its room (if any) the seat disconnected.
func (p *Process) HandleClose(s *session.Session) {
	p.Unregister(s)
	if entry, ok := p.getSessionRoom(s.ID); ok {
		p.clearSessionRoom(s.ID)
		p.DisconnectFromRoom(entry, s.ID)
	}
}

func (p *Process) handleSetName(s *session.Session, data []byte) {
	var payload protocol.SetNamePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Name == "" {
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: "invalid name"})
		return
	}
	_, _, roomCode := s.Identity()
	s.SetIdentity(s.ID, payload.Name, roomCode)
	s.Send(protocol.OutNameSet, protocol.SetNamePayload{Name: payload.Name})
}

func (p *Process) handleCreateRoom(s *session.Session) {
	playerID, name, _ := s.Identity()
	if name == "" {
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: "set a name before creating a room"})
		return
	}
	entry := p.CreateRoom(s, playerID, name)
	s.SetIdentity(playerID, name, entry.code)
	p.setSessionRoom(s.ID, entry)
	s.Send(protocol.OutRoomCreated, protocol.RoomSummary{
		RoomID: entry.code, PlayerCount: 1, MaxPlayers: p.maxPlayers,
	})
}

func (p *Process) handleJoinRoom(s *session.Session, data []byte) {
	var payload protocol.JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: "invalid room id"})
		return
	}
	playerID, name, _ := s.Identity()
	if name == "" {
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: "set a name before joining a room"})
		return
	}
	entry, err := p.JoinRoom(s, payload.RoomID, playerID, name)
	if err != nil {
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: err.Error()})
		return
	}
	s.SetIdentity(playerID, name, entry.code)
	p.setSessionRoom(s.ID, entry)
	s.Send(protocol.OutRoomJoined, protocol.RoomSummary{RoomID: entry.code, MaxPlayers: p.maxPlayers})
}

func (p *Process) handleLeaveRoom(s *session.Session) {
	entry, ok := p.getSessionRoom(s.ID)
	if !ok {
		return
	}
	playerID, name, _ := s.Identity()
	p.clearSessionRoom(s.ID)
	p.LeaveRoom(entry, playerID)
	s.SetIdentity(playerID, name, "")
	s.Send(protocol.OutLeftRoom, struct{}{})
}

func (p *Process) handleListRooms(s *session.Session) {
	summaries := p.ListRooms()
	out := make([]protocol.RoomSummary, 0, len(summaries))
	for _, r := range summaries {
		out = append(out, protocol.RoomSummary{
			RoomID:      r.Code,
			PlayerCount: r.PlayerCount,
			MaxPlayers:  p.maxPlayers,
			InProgress:  r.InProgress,
		})
	}
	s.Send(protocol.OutRoomList, protocol.RoomListPayload{Rooms: out})
}

func (p *Process) handleReady(s *session.Session, data []byte) {
	entry, ok := p.getSessionRoom(s.ID)
	if !ok {
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: "not in a room"})
		return
	}
	var payload protocol.ReadyPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: "invalid ready payload"})
		return
	}
	playerID, _, _ := s.Identity()
	entry.rm.Submit(func(r *room.Room) {
		r.SetReady(playerID, payload.Ready)
	})
}

func (p *Process) handleChat(s *session.Session, data []byte) {
	entry, ok := p.getSessionRoom(s.ID)
	if !ok {
		return
	}
	var payload protocol.ChatPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	_, name, _ := s.Identity()
	entry.broadcastChat(name, payload.Message)
}

func (p *Process) handleAction(s *session.Session, data []byte) {
	entry, ok := p.getSessionRoom(s.ID)
	if !ok {
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: "not in a room"})
		return
	}
	var payload protocol.ActionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.Send(protocol.OutError, protocol.ErrorPayload{Message: "invalid action payload"})
		return
	}
	playerID, _, _ := s.Identity()

	switch payload.Action.Type {
	case protocol.ActionSelectMajorCrest:
		var a protocol.SelectMajorCrestAction
		if err := json.Unmarshal(payload.Action.Data, &a); err == nil {
			entry.rm.Submit(func(r *room.Room) {
				r.SelectMajorCrest(playerID, a.CrestID)
			})
		}
		return
	case protocol.ActionMerchantPick:
		var a protocol.MerchantPickAction
		if err := json.Unmarshal(payload.Action.Data, &a); err == nil {
			entry.rm.Submit(func(r *room.Room) {
				if err := r.MerchantPick(playerID, a.OptionID); err != nil {
					entry.dispatchBroadcast(playerID, protocol.OutActionResult, protocol.ActionResultPayload{
						Action: payload.Action.Type, Success: false, Error: err.Error(),
					})
				}
			})
		}
		return
	}

	entry.rm.Submit(func(r *room.Room) {
		actionType, err := r.HandleAction(playerID, payload.Action)
		result := protocol.ActionResultPayload{Action: actionType, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		entry.dispatchBroadcast(playerID, protocol.OutActionResult, result)
	})
}

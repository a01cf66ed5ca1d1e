package play

import "github.com/Zereker/gamewire/protocol"

// RegisterServer registers the codecs a server needs: decoders for
// serverbound packets and encoders for clientbound ones.
func RegisterServer(r *protocol.Registry, c Catalogs) {
	const (
		state = protocol.StatePlay
		out   = protocol.Clientbound
		in    = protocol.Serverbound
	)

	protocol.RegisterEncoder[PlayerJoinGame](r, state, out, JoinGameID, NewJoinGameCodec(c))
	protocol.RegisterEncoder[SetEntityPassengers](r, state, out, SetEntityPassengersID, PassengersCodec{})
	protocol.RegisterEncoder[EntityStatus](r, state, out, EntityStatusID, EntityStatusCodec{})
	protocol.RegisterEncoder[SetReducedDebug](r, state, out, EntityStatusID, ReducedDebugEncoder{})
	protocol.RegisterEncoder[SetOpLevel](r, state, out, EntityStatusID, OpLevelEncoder{})
	protocol.RegisterEncoder[SetGameMode](r, state, out, ChangeGameStateID, NewGameModeCodec(c))

	protocol.RegisterDecoder[GenerateJigsawStructure](r, state, in, GenerateJigsawStructureID, GenerateJigsawCodec{})
	protocol.RegisterDecoder[UpdateJigsawBlock](r, state, in, UpdateJigsawBlockID, UpdateJigsawCodec{})
	protocol.RegisterDecoder[PlayerMovementAndLook](r, state, in, PlayerMovementAndLookID, MovementCodec{})
	protocol.RegisterDecoder[PlayerAbilities](r, state, in, PlayerAbilitiesID, AbilitiesCodec{})
}

// RegisterClient registers the mirror image of RegisterServer: decoders for
// clientbound packets and encoders for serverbound ones. Entity status
// packets decode as EntityStatus.
func RegisterClient(r *protocol.Registry, c Catalogs) {
	const (
		state = protocol.StatePlay
		out   = protocol.Serverbound
		in    = protocol.Clientbound
	)

	protocol.RegisterEncoder[GenerateJigsawStructure](r, state, out, GenerateJigsawStructureID, GenerateJigsawCodec{})
	protocol.RegisterEncoder[UpdateJigsawBlock](r, state, out, UpdateJigsawBlockID, UpdateJigsawCodec{})
	protocol.RegisterEncoder[PlayerMovementAndLook](r, state, out, PlayerMovementAndLookID, MovementCodec{})
	protocol.RegisterEncoder[PlayerAbilities](r, state, out, PlayerAbilitiesID, AbilitiesCodec{})

	protocol.RegisterDecoder[PlayerJoinGame](r, state, in, JoinGameID, NewJoinGameCodec(c))
	protocol.RegisterDecoder[SetEntityPassengers](r, state, in, SetEntityPassengersID, PassengersCodec{})
	protocol.RegisterDecoder[EntityStatus](r, state, in, EntityStatusID, EntityStatusCodec{})
	protocol.RegisterDecoder[SetGameMode](r, state, in, ChangeGameStateID, NewGameModeCodec(c))
}

// RegisterAll registers both sides into one registry, for tools that decode
// traffic in either direction.
func RegisterAll(r *protocol.Registry, c Catalogs) {
	RegisterServer(r, c)
	RegisterClient(r, c)
}

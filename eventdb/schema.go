// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package eventdb

const eventTableSchema = `
create table if not exists event (
	sequence integer primary key,
	period integer not null,
	contract blob(20) not null,
	kind text not null,
	participant blob(20) not null,
	amount text not null,
	modelID integer not null default 0
);

CREATE INDEX if not exists periodIndex on event(period);
CREATE INDEX if not exists participantIndex on event(participant);
CREATE INDEX if not exists kindIndex on event(kind);
`

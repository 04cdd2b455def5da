package qbittorrent

// Torrent is one entry of /torrents/info.
type Torrent struct {
	AddedOn            int64        `json:"added_on"`
	AmountLeft         int64        `json:"amount_left"`
	AutoTMM            bool         `json:"auto_tmm"`
	Availability       float64      `json:"availability"`
	Category           string       `json:"category"`
	Completed          int64        `json:"completed"`
	CompletionOn       int64        `json:"completion_on"`
	ContentPath        string       `json:"content_path"`
	DlLimit            int64        `json:"dl_limit"`
	DlSpeed            int64        `json:"dlspeed"`
	DownloadPath       string       `json:"download_path"`
	Downloaded         int64        `json:"downloaded"`
	DownloadedSession  int64        `json:"downloaded_session"`
	ETA                int64        `json:"eta"`
	FirstLastPiecePrio bool         `json:"f_l_piece_prio"`
	ForceStart         bool         `json:"force_start"`
	Hash               string       `json:"hash"`
	LastActivity       int64        `json:"last_activity"`
	MagnetURI          string       `json:"magnet_uri"`
	MaxRatio           float64      `json:"max_ratio"`
	MaxSeedingTime     int64        `json:"max_seeding_time"`
	Name               string       `json:"name"`
	NumComplete        int64        `json:"num_complete"`
	NumIncomplete      int64        `json:"num_incomplete"`
	NumLeechs          int64        `json:"num_leechs"`
	NumSeeds           int64        `json:"num_seeds"`
	Priority           int64        `json:"priority"`
	Progress           float64      `json:"progress"`
	Ratio              float64      `json:"ratio"`
	RatioLimit         float64      `json:"ratio_limit"`
	SavePath           string       `json:"save_path"`
	SeedingTime        int64        `json:"seeding_time"`
	SeedingTimeLimit   int64        `json:"seeding_time_limit"`
	SeenComplete       int64        `json:"seen_complete"`
	SequentialDownload bool         `json:"seq_dl"`
	Size               int64        `json:"size"`
	State              TorrentState `json:"state"`
	SuperSeeding       bool         `json:"super_seeding"`
	Tags               string       `json:"tags"`
	TimeActive         int64        `json:"time_active"`
	TotalSize          int64        `json:"total_size"`
	Tracker            string       `json:"tracker"`
	UpLimit            int64        `json:"up_limit"`
	Uploaded           int64        `json:"uploaded"`
	UploadedSession    int64        `json:"uploaded_session"`
	UpSpeed            int64        `json:"upspeed"`
}

// TorrentState is qBittorrent's own status tag.
type TorrentState string

const (
	// Some error occurred, applies to paused torrents
	TorrentStateError TorrentState = "error"
	// Torrent data files are missing
	TorrentStateMissingFiles TorrentState = "missingFiles"
	// Torrent is being seeded and data is being transferred
	TorrentStateUploading TorrentState = "uploading"
	// Torrent is paused and has finished downloading (before 5.0)
	TorrentStatePausedUP TorrentState = "pausedUP"
	// Torrent is stopped and has finished downloading (5.0+)
	TorrentStateStoppedUP TorrentState = "stoppedUP"
	// Queuing is enabled and torrent is queued for upload
	TorrentStateQueuedUP TorrentState = "queuedUP"
	// Torrent is being seeded, but no connection were made
	TorrentStateStalledUP TorrentState = "stalledUP"
	// Torrent has finished downloading and is being checked
	TorrentStateCheckingUP TorrentState = "checkingUP"
	// Torrent is forced to uploading and ignore queue limit
	TorrentStateForcedUP TorrentState = "forcedUP"
	// Torrent is allocating disk space for download
	TorrentStateAllocating TorrentState = "allocating"
	// Torrent is being downloaded and data is being transferred
	TorrentStateDownloading TorrentState = "downloading"
	// Torrent has just started downloading and is fetching metadata
	TorrentStateMetaDL TorrentState = "metaDL"
	// Torrent is forcibly fetching metadata
	TorrentStateForcedMetaDL TorrentState = "forcedMetaDL"
	// Torrent is paused and has NOT finished downloading (before 5.0)
	TorrentStatePausedDL TorrentState = "pausedDL"
	// Torrent is stopped and has NOT finished downloading (5.0+)
	TorrentStateStoppedDL TorrentState = "stoppedDL"
	// Queuing is enabled and torrent is queued for download
	TorrentStateQueuedDL TorrentState = "queuedDL"
	// Torrent is being downloaded, but no connection were made
	TorrentStateStalledDL TorrentState = "stalledDL"
	// Same as checkingUP, but torrent has NOT finished downloading
	TorrentStateCheckingDL TorrentState = "checkingDL"
	// Torrent is forced to downloading to ignore queue limit
	TorrentStateForcedDL TorrentState = "forcedDL"
	// Torrent is queued for a hash check
	TorrentStateQueuedForChecking TorrentState = "queuedForChecking"
	// Checking resume data on qBt startup
	TorrentStateCheckingResumeData TorrentState = "checkingResumeData"
	// Torrent is moving to another location
	TorrentStateMoving TorrentState = "moving"
	// Unknown status
	TorrentStateUnknown TorrentState = "unknown"
)

// TorrentFilter is the filter parameter of /torrents/info.
type TorrentFilter string

const (
	TorrentFilterAll         TorrentFilter = "all"
	TorrentFilterDownloading TorrentFilter = "downloading"
	TorrentFilterSeeding     TorrentFilter = "seeding"
	TorrentFilterCompleted   TorrentFilter = "completed"
	TorrentFilterActive      TorrentFilter = "active"
	TorrentFilterInactive    TorrentFilter = "inactive"
	TorrentFilterStalled     TorrentFilter = "stalled"
	TorrentFilterErrored     TorrentFilter = "errored"

	// Spelled "stopped" / "running" by 5.0+ servers; ListTorrents translates
	// either spelling to the one the server understands.
	TorrentFilterPaused  TorrentFilter = "paused"
	TorrentFilterResumed TorrentFilter = "resumed"
	TorrentFilterStopped TorrentFilter = "stopped"
	TorrentFilterRunning TorrentFilter = "running"
)

// ListOptions filters and pages /torrents/info.
type ListOptions struct {
	Hashes []string
	Filter TorrentFilter
	// Empty Category and Tag are not sent, so they match any value.
	Category string
	Tag      string
	Sort     string
	Reverse  bool
	Offset   int
	Limit    int
}

// BuildInfo is returned by /app/buildInfo.
type BuildInfo struct {
	Qt         string `json:"qt"`
	Libtorrent string `json:"libtorrent"`
	Boost      string `json:"boost"`
	OpenSSL    string `json:"openssl"`
	Zlib       string `json:"zlib"`
	Bitness    int    `json:"bitness"`
}

// Preferences is the application preference map. Only keys present are
// changed by SetPreferences. JSON numbers decode as float64.
type Preferences map[string]any

// TorrentProperties is returned by /torrents/properties.
type TorrentProperties struct {
	SavePath               string  `json:"save_path"`
	CreationDate           int64   `json:"creation_date"`
	PieceSize              int64   `json:"piece_size"`
	Comment                string  `json:"comment"`
	TotalWasted            int64   `json:"total_wasted"`
	TotalUploaded          int64   `json:"total_uploaded"`
	TotalUploadedSession   int64   `json:"total_uploaded_session"`
	TotalDownloaded        int64   `json:"total_downloaded"`
	TotalDownloadedSession int64   `json:"total_downloaded_session"`
	UpLimit                int64   `json:"up_limit"`
	DlLimit                int64   `json:"dl_limit"`
	TimeElapsed            int64   `json:"time_elapsed"`
	SeedingTime            int64   `json:"seeding_time"`
	NbConnections          int64   `json:"nb_connections"`
	NbConnectionsLimit     int64   `json:"nb_connections_limit"`
	ShareRatio             float64 `json:"share_ratio"`
	AdditionDate           int64   `json:"addition_date"`
	CompletionDate         int64   `json:"completion_date"`
	CreatedBy              string  `json:"created_by"`
	DlSpeedAvg             int64   `json:"dl_speed_avg"`
	DlSpeed                int64   `json:"dl_speed"`
	ETA                    int64   `json:"eta"`
	LastSeen               int64   `json:"last_seen"`
	Peers                  int64   `json:"peers"`
	PeersTotal             int64   `json:"peers_total"`
	PiecesHave             int64   `json:"pieces_have"`
	PiecesNum              int64   `json:"pieces_num"`
	Reannounce             int64   `json:"reannounce"`
	Seeds                  int64   `json:"seeds"`
	SeedsTotal             int64   `json:"seeds_total"`
	TotalSize              int64   `json:"total_size"`
	UpSpeedAvg             int64   `json:"up_speed_avg"`
	UpSpeed                int64   `json:"up_speed"`
}

// TrackerStatus is the status column of /torrents/trackers.
type TrackerStatus int

const (
	// Tracker is disabled (used for DHT, PeX, and LSD)
	TrackerStatusDisabled TrackerStatus = 0
	// Tracker has not been contacted yet
	TrackerStatusNotContacted TrackerStatus = 1
	// Tracker has been contacted and is working
	TrackerStatusWorking TrackerStatus = 2
	// Tracker is updating
	TrackerStatusUpdating TrackerStatus = 3
	// Tracker has been contacted, but it is not working (or doesn't send proper replies)
	TrackerStatusNotWorking TrackerStatus = 4
)

// TorrentTracker is one entry of /torrents/trackers.
type TorrentTracker struct {
	URL           string        `json:"url"`
	Status        TrackerStatus `json:"status"`
	NumPeers      int           `json:"num_peers"`
	NumSeeds      int           `json:"num_seeds"`
	NumLeeches    int           `json:"num_leeches"`
	NumDownloaded int           `json:"num_downloaded"`
	Message       string        `json:"msg"`
}

// WebSeed is one entry of /torrents/webseeds.
type WebSeed struct {
	URL string `json:"url"`
}

// TorrentFile is one entry of /torrents/files.
type TorrentFile struct {
	Index        int          `json:"index"`
	Name         string       `json:"name"`
	Size         int64        `json:"size"`
	Progress     float64      `json:"progress"`
	Priority     FilePriority `json:"priority"`
	IsSeed       bool         `json:"is_seed,omitempty"`
	PieceRange   []int        `json:"piece_range"`
	Availability float64      `json:"availability"`
}

// FilePriority is a per-file download priority.
type FilePriority int

const (
	FilePrioritySkip    FilePriority = 0
	FilePriorityNormal  FilePriority = 1
	FilePriorityHigh    FilePriority = 6
	FilePriorityMaximal FilePriority = 7
)

// PieceState is one entry of /torrents/pieceStates.
type PieceState int

const (
	PieceStateNotDownloaded PieceState = 0
	PieceStateRequested     PieceState = 1
	PieceStateDownloaded    PieceState = 2
)

// TorrentPeer is one peer of /sync/torrentPeers.
type TorrentPeer struct {
	Client      string  `json:"client"`
	Connection  string  `json:"connection"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	DlSpeed     int64   `json:"dl_speed"`
	Downloaded  int64   `json:"downloaded"`
	Files       string  `json:"files"`
	Flags       string  `json:"flags"`
	FlagsDesc   string  `json:"flags_desc"`
	IP          string  `json:"ip"`
	Port        int     `json:"port"`
	Progress    float64 `json:"progress"`
	Relevance   float64 `json:"relevance"`
	UpSpeed     int64   `json:"up_speed"`
	Uploaded    int64   `json:"uploaded"`
}

// TorrentPeers is the /sync/torrentPeers payload. Peers is keyed by
// "ip:port".
type TorrentPeers struct {
	FullUpdate   bool                   `json:"full_update"`
	Rid          int64                  `json:"rid"`
	ShowFlags    bool                   `json:"show_flags"`
	Peers        map[string]TorrentPeer `json:"peers"`
	PeersRemoved []string               `json:"peers_removed"`
}

// Category is one entry of /torrents/categories.
type Category struct {
	Name     string `json:"name"`
	SavePath string `json:"savePath"`
}

// ContentLayout controls the folder layout of added torrents.
type ContentLayout string

const (
	ContentLayoutOriginal        ContentLayout = "Original"
	ContentLayoutSubfolderNone   ContentLayout = "NoSubfolder"
	ContentLayoutSubfolderCreate ContentLayout = "Subfolder"
)

// AddTorrentOptions are the qBittorrent options of /torrents/add.
type AddTorrentOptions struct {
	SavePath string
	Category string
	Tags     []string
	// Paused adds the torrent without starting it. Sent as "paused" or
	// "stopped" depending on the server version.
	Paused             bool
	SkipChecking       bool
	ContentLayout      ContentLayout
	Rename             string
	UpLimit            int64
	DlLimit            int64
	RatioLimit         float64
	SeedingTimeLimit   int64
	UseAutoTMM         bool
	SequentialDownload bool
	FirstLastPiecePrio bool
	// Filename of the uploaded .torrent part. Defaults to "torrent".
	Filename string
}

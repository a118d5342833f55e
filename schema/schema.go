// Package schema is a sample catalogue of entity schemas: items, messages,
// contacts and folders with a representative set of properties.
//
// Property tables are hand-written and ordered as the server expects them in
// create requests.
package schema

import (
	"github.com/smnsjas/go-ewscore/entity"
	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/xmlstream"
)

const (
	writable  = propdef.Writable
	updatable = propdef.Updatable
	readOnly  = propdef.ReadOnly
)

// Item properties.
var (
	MimeContent = propdef.NewBinary("MimeContent", "item:MimeContent",
		propdef.CanSet|propdef.CanUpdate|propdef.MustBeExplicitlyLoaded)
	ItemID     = propdef.NewIdentity("ItemId", "item:ItemId", readOnly, IDValue)
	Subject    = propdef.NewString("Subject", "item:Subject", writable)
	Body       = propdef.NewComposite("Body", "item:Body", writable|propdef.NotInSummary, func() *MessageBody { return &MessageBody{} })
	Received   = propdef.NewDateTime("DateTimeReceived", "item:DateTimeReceived", readOnly)
	Size       = propdef.NewInt("Size", "item:Size", readOnly)
	Categories = propdef.NewComposite("Categories", "item:Categories",
		writable|propdef.AutoInstantiateOnRead, func() *StringList { return &StringList{} })
	Importance = propdef.NewEnum("Importance", "item:Importance", updatable,
		ImportanceLow, ImportanceNormal, ImportanceHigh)
	IsDraft     = propdef.NewBool("IsDraft", "item:IsDraft", readOnly)
	InstanceKey = propdef.NewBinary("InstanceKey", "item:InstanceKey",
		readOnly|propdef.MustBeExplicitlyLoaded).Since(propdef.Exchange2013)
)

// Message properties.
var (
	ToRecipients = propdef.NewComposite("ToRecipients", "message:ToRecipients",
		writable|propdef.AutoInstantiateOnRead, func() *Recipients { return &Recipients{} })
	InternetMessageID = propdef.NewString("InternetMessageId", "message:InternetMessageId", readOnly)
	IsRead            = propdef.NewBool("IsRead", "message:IsRead", updatable)
)

// Contact properties.
var (
	GivenName      = propdef.NewString("GivenName", "contacts:GivenName", writable)
	CompanyName    = propdef.NewString("CompanyName", "contacts:CompanyName", writable)
	EmailAddresses = propdef.NewComposite("EmailAddresses", "contacts:EmailAddresses",
		writable|propdef.AutoInstantiateOnRead, NewEmailAddressDictionary)
	Birthday = propdef.NewDateTime("Birthday", "contacts:Birthday", writable).AsNullable()
	Surname  = propdef.NewString("Surname", "contacts:Surname", writable)
	Alias    = propdef.NewString("Alias", "contacts:Alias", readOnly).Since(propdef.Exchange2010SP2)
)

// Folder properties.
var (
	FolderID         = propdef.NewIdentity("FolderId", "folder:FolderId", readOnly, IDValue)
	FolderClass      = propdef.NewString("FolderClass", "folder:FolderClass", writable)
	DisplayName      = propdef.NewString("DisplayName", "folder:DisplayName", writable)
	TotalCount       = propdef.NewInt("TotalCount", "folder:TotalCount", readOnly)
	ChildFolderCount = propdef.NewInt("ChildFolderCount", "folder:ChildFolderCount", readOnly)
	UnreadCount      = propdef.NewInt("UnreadCount", "folder:UnreadCount", readOnly|propdef.NotInSummary)
)

// Schemas.
var (
	Item = propdef.NewSchema("Item", xmlstream.Types.Name("Item"), propdef.ItemChanges, ItemID,
		MimeContent, ItemID, Subject, Body, Received, Size, Categories, Importance, IsDraft, InstanceKey)

	Message = Item.Extend("Message", xmlstream.Types.Name("Message"),
		ToRecipients, InternetMessageID, IsRead)

	Contact = Item.Extend("Contact", xmlstream.Types.Name("Contact"),
		GivenName, CompanyName, EmailAddresses, Birthday, Surname, Alias)

	Folder = propdef.NewSchema("Folder", xmlstream.Types.Name("Folder"), propdef.FolderChanges, FolderID,
		FolderID, FolderClass, DisplayName, TotalCount, ChildFolderCount, UnreadCount)
)

// All returns every schema of the catalogue.
func All() []*propdef.Schema {
	return []*propdef.Schema{Item, Message, Contact, Folder}
}

// Lookup returns the schema whose entity element has the given local name.
func Lookup(local string) (*propdef.Schema, bool) {
	for _, s := range All() {
		if s.Element.Local == local {
			return s, true
		}
	}
	return nil, false
}

// NewRegistry returns an entity registry for every schema of the catalogue.
func NewRegistry() *entity.Registry {
	return entity.NewRegistry(All()...)
}
